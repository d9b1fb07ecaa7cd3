// Package export reads blog exports: a YAML or JSON list of posts, each
// with its comments.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"blogport/app/models"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json". An empty name is YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q", name)
	}
}

// FormatFor guesses the format from a file name.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates the export at path. A path of "-" reads stdin.
// An empty format is guessed from the file name.
func Load(path string, format Format, stdin io.Reader) ([]models.ExternalPost, error) {
	if format == "" {
		format = FormatFor(path)
	}

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close()
		r = f
	}

	posts, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}
	return posts, nil
}

// Decode parses and validates an export.
func Decode(r io.Reader, format Format) ([]models.ExternalPost, error) {
	var posts []models.ExternalPost
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&posts); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&posts); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	for i := range posts {
		if err := posts[i].Validate(); err != nil {
			return nil, fmt.Errorf("post %d (%q): %w", i, posts[i].Title, err)
		}
	}
	return posts, nil
}
