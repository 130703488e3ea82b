package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/titlelens/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const maxParseAttempts = 3

// GenreTagger tags titles using a chat model.
type GenreTagger struct {
	client    llms.Model
	labels    []string
	canonical map[string]string // lowercased label -> declared label
	maxGenres int
	logger    *slog.Logger
}

var _ ai.GenreTagger = (*GenreTagger)(nil)

type tagResponse struct {
	Genres []string `json:"genres"`
}

// NewGenreTagger creates a tagger from config.
func NewGenreTagger(config *ai.Config) (ai.GenreTagger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return newGenreTagger(client, config), nil
}

func newGenreTagger(client llms.Model, config *ai.Config) *GenreTagger {
	canonical := make(map[string]string, len(config.Labels))
	for _, label := range config.Labels {
		canonical[strings.ToLower(label)] = label
	}
	return &GenreTagger{
		client:    client,
		labels:    append([]string(nil), config.Labels...),
		canonical: canonical,
		maxGenres: config.MaxGenres,
		logger:    slog.Default().With("component", "openai-tagger"),
	}
}

// TagGenres asks the model for genres of title. Answers outside the label set are dropped.
func (t *GenreTagger) TagGenres(ctx context.Context, title string) ([]string, error) {
	title = scrubTitle(title)
	if title == "" {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(t.labels, t.maxGenres))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(title)},
		},
	}

	// Retry only malformed JSON; transport errors go straight back to the caller.
	var result tagResponse
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			t.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			t.logger.Debug("no choices returned from model", "title", title)
			return []string{}, nil
		}

		text := stripCodeFence(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			lastErr = err
			t.logger.Warn("error parsing tagger response", "attempt", attempt+1, "response", text, "err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		t.logger.Error("failed to parse tagger response after retries", "err", lastErr)
		return nil, lastErr
	}

	genres := make([]string, 0, len(result.Genres))
	seen := make(map[string]bool, len(result.Genres))
	for _, g := range result.Genres {
		label, ok := t.canonical[strings.ToLower(strings.TrimSpace(g))]
		if !ok {
			t.logger.Debug("dropping unknown genre", "title", title, "genre", g)
			continue
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		genres = append(genres, label)
		if len(genres) == t.maxGenres {
			break
		}
	}
	return genres, nil
}
