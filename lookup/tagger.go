package lookup

import (
	"context"
	"log/slog"

	"github.com/poiesic/titlelens/ai"
	"github.com/poiesic/titlelens/core"
)

type taggedService struct {
	Service
	tagger ai.GenreTagger
	logger *slog.Logger
}

// WithTagger returns a Service whose Enrich falls back to tagger when the
// upstream returns no genres for a title. Upstream errors are returned as-is;
// tagger errors are logged and the empty upstream answer is kept.
func WithTagger(svc Service, tagger ai.GenreTagger, logger *slog.Logger) (Service, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}
	if tagger == nil {
		return nil, ErrTaggerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taggedService{Service: svc, tagger: tagger, logger: logger}, nil
}

func (s *taggedService) Enrich(ctx context.Context, record *core.Record) ([]string, error) {
	genres, err := s.Service.Enrich(ctx, record)
	if err != nil || len(genres) > 0 {
		return genres, err
	}

	tagged, err := s.tagger.TagGenres(ctx, record.Title)
	if err != nil {
		s.logger.Warn("genre tagging failed, keeping upstream result", "id", record.Id, "title", record.Title, "err", err)
		return genres, nil
	}
	s.logger.Debug("tagged genres", "id", record.Id, "genres", tagged)
	return tagged, nil
}
