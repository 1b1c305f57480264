package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/motifhq/motif/pkg/errors"
)

// DirFetcher serves template and texture documents from a local directory.
// Template locators resolve relative to Dir; textures live under
// Dir/textures/{id}.svg. Used by the CLI when no document host is configured.
type DirFetcher struct {
	Dir string
}

func (f *DirFetcher) FetchTemplate(_ context.Context, locator string) (string, error) {
	path := locator
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.Dir, locator)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeTemplateNotFound, err, "template document %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeFetch, err, "read template document %s", path)
	}
	return string(data), nil
}

func (f *DirFetcher) FetchTexture(_ context.Context, id string) (string, error) {
	path := filepath.Join(f.Dir, "textures", id+".svg")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeTextureNotFound, err, "texture document %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeFetch, err, "read texture document %s", path)
	}
	return string(data), nil
}

var _ DocumentFetcher = (*DirFetcher)(nil)

// LoadTemplateIndex reads a JSON template catalog from disk. The file holds an
// array of Template records; it is the Mongo-less catalog source for local
// CLI runs.
func LoadTemplateIndex(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "read template index %s", path)
	}
	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse template index %s", path)
	}
	return templates, nil
}
