package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/decor"
	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/observability"
	"github.com/motifhq/motif/pkg/store"
	"github.com/motifhq/motif/pkg/svgdoc"
	"github.com/motifhq/motif/pkg/textfit"
)

// BaseResult is a template after text injection and auto-fit, before any
// decorative transform. It carries the denormalized template attributes the
// later stages need.
type BaseResult struct {
	Template store.Template
	Text     string
	Doc      string
}

// Variant is a base result after a specific descriptor tuple is applied.
type Variant struct {
	Descriptor Descriptor
	Template   store.Template
	Doc        string
}

// Runner executes the pipeline. It is stateless except for its collaborators;
// per-batch state (RNG, base-result memoization) lives in the batch itself.
type Runner struct {
	Store      store.TemplateStore
	Fetcher    store.DocumentFetcher
	Cache      cache.Cache
	Keyer      cache.Keyer
	Measurer   textfit.Measurer
	Logger     *log.Logger
	// TextureGroups maps group identifiers to concrete texture members.
	TextureGroups map[string][]string
}

// NewRunner creates a runner. A nil cache disables base-result caching; a
// nil keyer uses the default; a nil logger uses the package default.
func NewRunner(st store.TemplateStore, fetcher store.DocumentFetcher, c cache.Cache, m textfit.Measurer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    st,
		Fetcher:  fetcher,
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Measurer: m,
		Logger:   logger,
	}
}

// BaseResult produces (or recalls) the post-injection, post-auto-fit document
// for one template and text. Recomputing it is idempotent for the same input.
func (r *Runner) BaseResult(ctx context.Context, tpl store.Template, text string, refresh bool) (*BaseResult, error) {
	key := r.Keyer.BaseResultKey(tpl.ID, text)
	if !refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "base")
			return &BaseResult{Template: tpl, Text: text, Doc: string(data)}, nil
		}
		observability.Cache().OnCacheMiss(ctx, "base")
	}

	observability.Pipeline().OnBaseResultStart(ctx, tpl.ID)
	start := time.Now()
	raw, err := r.Fetcher.FetchTemplate(ctx, tpl.Locator)
	if err != nil {
		observability.Pipeline().OnBaseResultComplete(ctx, tpl.ID, time.Since(start), err)
		return nil, err
	}
	doc, err := svgdoc.Normalize(raw)
	if err != nil {
		observability.Pipeline().OnBaseResultComplete(ctx, tpl.ID, time.Since(start), err)
		return nil, err
	}

	for _, zone := range tpl.EditableZones() {
		doc, err = textfit.Inject(doc, zone.Index, text)
		if err != nil {
			observability.Pipeline().OnBaseResultComplete(ctx, tpl.ID, time.Since(start), err)
			return nil, err
		}
		fitted, err := textfit.AutoFit(ctx, r.Measurer, doc, zone.Index, textfit.FitOptions{
			MaxWidth: zone.MaxWidth,
			FontSize: zone.FontSize,
		})
		if err != nil {
			// Measurement failures degrade to the unfitted document.
			r.Logger.Warn("auto-fit degraded",
				"template", tpl.ID, "zone", zone.Index, "error", err)
		}
		doc = fitted
	}

	_ = r.Cache.Set(ctx, key, []byte(doc), cache.TTLTemplate)
	observability.Cache().OnCacheSet(ctx, "base", len(doc))
	observability.Pipeline().OnBaseResultComplete(ctx, tpl.ID, time.Since(start), nil)
	return &BaseResult{Template: tpl, Text: text, Doc: doc}, nil
}

// Variant applies the descriptor's color, frame, tilt, and texture to a base
// result. Compositor failures degrade to the least-decorated form produced so
// far rather than failing the variant.
func (r *Runner) Variant(ctx context.Context, base *BaseResult, d Descriptor, rng *rand.Rand) (*Variant, error) {
	if d.TemplateID == "" {
		d.TemplateID = base.Template.ID
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc := base.Doc
	if tier := decor.ParseCornerTier(base.Template.CornerStyle); tier != decor.CornerStraight {
		doc = decor.RoundCorners(doc, tier)
	}
	color := d.Color
	if color != "" {
		doc = decor.Colorize(doc, color)
	}
	doc = decor.ApplyFrame(doc, decor.ParseFrameRendering(d.Frame), color)
	if d.Tilt != 0 {
		tilted, err := decor.Tilt(doc, d.Tilt)
		if err != nil {
			r.Logger.Warn("tilt degraded", "template", d.TemplateID, "tilt", d.Tilt, "error", err)
		} else {
			doc = tilted
		}
	}
	if d.Texture != "" {
		tz := &decor.Texturizer{
			Fetcher: r.Fetcher,
			Cache:   r.Cache,
			Keyer:   r.Keyer,
			Groups:  r.TextureGroups,
			Rand:    rng,
			Logger:  r.Logger,
		}
		doc = tz.Apply(ctx, doc, d.Texture)
	}
	observability.Pipeline().OnVariantComplete(ctx, d.TemplateID, d.Encode(), time.Since(start), nil)
	return &Variant{Descriptor: d, Template: base.Template, Doc: doc}, nil
}

// Regenerate rebuilds a variant from its compact descriptor and the user
// text, the deep-link restore path. The applied color, tilt, and texture
// identifier always match the descriptor; texture placement uses the
// descriptor-derived seed so restored variants are stable.
func (r *Runner) Regenerate(ctx context.Context, text string, d Descriptor) (*Variant, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	tpl, err := r.findTemplate(ctx, d.TemplateID)
	if err != nil {
		return nil, err
	}
	base, err := r.BaseResult(ctx, tpl, text, false)
	if err != nil {
		return nil, err
	}
	return r.Variant(ctx, base, d, rand.New(rand.NewSource(seedFor(d, text))))
}

func (r *Runner) findTemplate(ctx context.Context, id string) (store.Template, error) {
	templates, err := r.Store.ListActiveTemplates(ctx)
	if err != nil {
		return store.Template{}, err
	}
	for _, tpl := range templates {
		if tpl.ID == id {
			return tpl, nil
		}
	}
	return store.Template{}, errors.New(errors.ErrCodeTemplateNotFound, "template %q not in catalog", id)
}

// seedFor derives a stable RNG seed from a descriptor and text so restored
// variants reproduce their texture placement.
func seedFor(d Descriptor, text string) int64 {
	h := int64(1469598103934665603)
	for _, s := range []string{d.TemplateID, d.Color, d.Frame, d.Texture, text} {
		for i := 0; i < len(s); i++ {
			h ^= int64(s[i])
			h *= 1099511628211
		}
	}
	return h ^ int64(d.Tilt)
}

// Close releases the runner's cache resources.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
