package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/motifhq/motif/pkg/errors"
)

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "t1.svg"), []byte("<svg/>"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "textures"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "textures", "dots.svg"), []byte("<svg>dots</svg>"), 0600); err != nil {
		t.Fatal(err)
	}

	f := &DirFetcher{Dir: dir}
	ctx := context.Background()

	doc, err := f.FetchTemplate(ctx, "t1.svg")
	if err != nil || doc != "<svg/>" {
		t.Errorf("FetchTemplate = (%q, %v)", doc, err)
	}
	if _, err := f.FetchTemplate(ctx, "ghost.svg"); !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("missing template: %v", err)
	}

	tex, err := f.FetchTexture(ctx, "dots")
	if err != nil || tex != "<svg>dots</svg>" {
		t.Errorf("FetchTexture = (%q, %v)", tex, err)
	}
	if _, err := f.FetchTexture(ctx, "ghost"); !errors.Is(err, errors.ErrCodeTextureNotFound) {
		t.Errorf("missing texture: %v", err)
	}
}

func TestLoadTemplateIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	index := `[
  {"id": "t1", "locator": "t1.svg", "border_style": "solid",
   "palette": ["c0392b"],
   "zones": [{"index": 0, "font_size": 20, "max_width": 100, "editable": true}]}
]`
	if err := os.WriteFile(path, []byte(index), 0600); err != nil {
		t.Fatal(err)
	}

	templates, err := LoadTemplateIndex(path)
	if err != nil {
		t.Fatalf("LoadTemplateIndex: %v", err)
	}
	if len(templates) != 1 || templates[0].ID != "t1" || templates[0].BorderStyle != "solid" {
		t.Fatalf("templates = %+v", templates)
	}
	zones := templates[0].EditableZones()
	if len(zones) != 1 || zones[0].MaxWidth != 100 {
		t.Errorf("zones = %+v", zones)
	}

	if _, err := LoadTemplateIndex(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing index accepted")
	}
}
