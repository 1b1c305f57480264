package pipeline

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"github.com/motifhq/motif/pkg/store"
)

// frameCompat is the structural compatibility table keyed by border style:
// not every border style supports every frame rendering. Styles not listed
// only support the authored single frame.
var frameCompat = map[string][]string{
	"solid":  {"single", "double", "split"},
	"dashed": {"single", "double"},
	"thin":   {"single", "double", "split"},
	"thick":  {"single", "split"},
	"ornate": {"single"},
}

// compatibleFrames returns the frame renderings a border style supports.
func compatibleFrames(borderStyle string) []string {
	if frames, ok := frameCompat[strings.ToLower(borderStyle)]; ok {
		return frames
	}
	return []string{"single"}
}

// FamilyGroup is one border-style family of catalog variants, ordered for
// display by sub-style, then corner tier, then fill tier.
type FamilyGroup struct {
	Family   string
	Variants []Variant
}

// CatalogResult is the grouped output of catalog-mode generation.
type CatalogResult struct {
	Groups []FamilyGroup
	Stats  Stats
}

// Catalog runs catalog mode: every eligible single-frame template, every
// frame rendering its border style supports, one uniformly random palette
// color per (template, frame) pair, grouped by border-style family. A failing
// template is logged and skipped; the batch never aborts.
func (r *Runner) Catalog(ctx context.Context, opts Options) (*CatalogResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(int64(opts.Seed)))

	templates, err := r.Store.ListActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}

	result := &CatalogResult{}
	byFamily := make(map[string][]Variant)
	for _, tpl := range templates {
		if !eligibleForCatalog(tpl) {
			continue
		}
		result.Stats.Templates++

		base, err := r.BaseResult(ctx, tpl, opts.Text, opts.Refresh)
		if err != nil {
			opts.Logger.Warn("skipping template", "template", tpl.ID, "error", err)
			result.Stats.Skipped++
			continue
		}
		for _, frame := range compatibleFrames(tpl.BorderStyle) {
			d := Descriptor{
				TemplateID: tpl.ID,
				Color:      pickColor(tpl.Palette, rng),
				Frame:      frame,
			}
			v, err := r.Variant(ctx, base, d, rng)
			if err != nil {
				opts.Logger.Warn("skipping variant", "template", tpl.ID, "frame", frame, "error", err)
				result.Stats.Skipped++
				continue
			}
			family := familyOf(tpl)
			byFamily[family] = append(byFamily[family], *v)
			result.Stats.Produced++
		}
	}

	families := make([]string, 0, len(byFamily))
	for f := range byFamily {
		families = append(families, f)
	}
	sort.Strings(families)
	for _, f := range families {
		variants := byFamily[f]
		sort.SliceStable(variants, func(i, j int) bool {
			a, b := variants[i].Template, variants[j].Template
			if a.FrameStyle != b.FrameStyle {
				return a.FrameStyle < b.FrameStyle
			}
			if a.CornerStyle != b.CornerStyle {
				return a.CornerStyle < b.CornerStyle
			}
			return a.FillStyle < b.FillStyle
		})
		result.Groups = append(result.Groups, FamilyGroup{Family: f, Variants: variants})
	}
	return result, nil
}

// eligibleForCatalog keeps the single-frame template class.
func eligibleForCatalog(tpl store.Template) bool {
	return tpl.FrameStyle == "" || strings.EqualFold(tpl.FrameStyle, "single")
}

// familyOf derives the display grouping key from the border-style tag.
func familyOf(tpl store.Template) string {
	if tpl.BorderStyle == "" {
		return "plain"
	}
	return strings.ToLower(tpl.BorderStyle)
}

// pickColor chooses one palette hint color uniformly at random; templates
// without a palette keep their authored colors.
func pickColor(palette []string, rng *rand.Rand) string {
	if len(palette) == 0 {
		return ""
	}
	return strings.TrimPrefix(palette[rng.Intn(len(palette))], "#")
}

// Generate runs filtered mode: the cross-product of matching templates,
// colors, applicable frame renderings, tilts, and textures, shuffled for
// display variety and served through an incremental Pager. Each empty axis
// defaults to a single choice.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Pager, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(int64(opts.Seed)))

	templates, err := r.Store.ListActiveTemplates(ctx)
	if err != nil {
		return nil, err
	}

	var jobs []job
	for _, tpl := range templates {
		if !matchesFilters(tpl, opts.Filters) {
			continue
		}
		colors := opts.Colors
		if len(colors) == 0 {
			colors = []string{pickColor(tpl.Palette, rng)}
		}
		tilts := opts.Tilts
		if len(tilts) == 0 {
			tilts = []int{0}
		}
		textures := opts.Textures
		if len(textures) == 0 {
			textures = []string{""}
		}
		frames := compatibleFrames(tpl.BorderStyle)
		if opts.Filters.Frame != "" {
			frames = intersectFrames(frames, opts.Filters.Frame)
		}
		for _, color := range colors {
			for _, frame := range frames {
				for _, tilt := range tilts {
					for _, texture := range textures {
						jobs = append(jobs, job{
							template: tpl,
							desc: Descriptor{
								TemplateID: tpl.ID,
								Color:      strings.TrimPrefix(color, "#"),
								Frame:      frame,
								Tilt:       tilt,
								Texture:    texture,
							},
						})
					}
				}
			}
		}
	}

	rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
	return newPager(r, opts, jobs, rng), nil
}

func matchesFilters(tpl store.Template, f Filters) bool {
	match := func(want, have string) bool {
		return want == "" || strings.EqualFold(want, have)
	}
	return match(f.Shape, tpl.Shape) &&
		match(f.Object, tpl.Object) &&
		match(f.Border, tpl.BorderStyle) &&
		match(f.Corner, tpl.CornerStyle) &&
		match(f.Fill, tpl.FillStyle)
}

func intersectFrames(frames []string, want string) []string {
	for _, f := range frames {
		if strings.EqualFold(f, want) {
			return []string{f}
		}
	}
	return nil
}
