package ai

import "context"

// GenreTagger assigns genre labels to a title.
type GenreTagger interface {
	// TagGenres returns the genres that best describe title, most relevant first.
	// Every returned label is a member of the tagger's configured label set.
	// Returns an empty slice if no label fits.
	TagGenres(ctx context.Context, title string) ([]string, error)
}
