package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout read by Load.
type SeedFile struct {
	Titles []*Entry `yaml:"titles"`
}

// ReadSeed decodes a seed document.
func ReadSeed(r io.Reader) ([]*Entry, error) {
	var seed SeedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	return seed.Titles, nil
}

// Load adds every title in the seed file at path and returns how many were read.
func (c *Catalog) Load(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries, err := ReadSeed(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Add(ctx, entries...); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	c.logger.Info("loaded catalog seed", "path", path, "titles", len(entries))
	return len(entries), nil
}
