package decor

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/svgdoc"
)

// TextureFetcher retrieves a texture document from the collaborator store.
type TextureFetcher interface {
	FetchTexture(ctx context.Context, textureID string) (string, error)
}

// oversizeFactor guarantees full coverage of the target frame under the
// worst-case 45 degree rotation of a square texture.
var oversizeFactor = math.Sqrt2

// Texturizer composites texture documents over rendered variants. Fetched
// textures are cached per identifier for the process lifetime; a named
// identifier may be a group, resolved to one concrete member per application.
type Texturizer struct {
	Fetcher TextureFetcher
	Cache   cache.Cache
	Keyer   cache.Keyer
	// Groups maps a group identifier to its concrete member identifiers.
	Groups map[string][]string
	Rand   *rand.Rand
	Logger *log.Logger
}

// Apply composites the named texture above the document's content, scaled to
// cover the visible region and rotated by a uniformly random angle. Any
// failure (fetch, malformed texture, empty content) degrades to the input
// document; texture application never fails a variant.
func (t *Texturizer) Apply(ctx context.Context, doc, textureID string) string {
	if textureID == "" {
		return doc
	}
	id := t.resolve(textureID)

	texture, err := t.fetch(ctx, id)
	if err != nil {
		if t.Logger != nil {
			t.Logger.Warn("texture fetch failed, skipping overlay", "texture", id, "error", err)
		}
		return doc
	}
	content, texVB, ok := textureContent(texture)
	if !ok {
		if t.Logger != nil {
			t.Logger.Warn("texture has no usable content, skipping overlay", "texture", id)
		}
		return doc
	}

	vb, err := svgdoc.GetViewBox(doc)
	if err != nil {
		return doc
	}
	scale := math.Max(vb.Width/texVB.Width, vb.Height/texVB.Height) * oversizeFactor
	angle := 1 + t.rng().Intn(359)

	// Scale about the texture's own center, rotate for uniqueness, then land
	// its center on the frame center.
	group := `<g transform="translate(` + trimAngle(vb.CenterX()) + ` ` + trimAngle(vb.CenterY()) +
		`) rotate(` + trimAngle(float64(angle)) +
		`) scale(` + trimAngle(scale) +
		`) translate(` + trimAngle(-texVB.CenterX()) + ` ` + trimAngle(-texVB.CenterY()) + `)">` +
		content + `</g>`
	return appendContent(doc, group)
}

// resolve maps a group identifier to one uniformly random concrete member.
func (t *Texturizer) resolve(textureID string) string {
	members := t.Groups[textureID]
	if len(members) == 0 {
		return textureID
	}
	return members[t.rng().Intn(len(members))]
}

func (t *Texturizer) rng() *rand.Rand {
	if t.Rand == nil {
		t.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return t.Rand
}

// fetch returns the texture document, consulting the cache first and
// populating it on miss. Textures never expire within a backend's lifetime.
func (t *Texturizer) fetch(ctx context.Context, id string) (string, error) {
	keyer := t.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.TextureKey(id)
	if t.Cache != nil {
		if data, ok, err := t.Cache.Get(ctx, key); err == nil && ok {
			return string(data), nil
		}
	}
	texture, err := t.Fetcher.FetchTexture(ctx, id)
	if err != nil {
		return "", err
	}
	if t.Cache != nil {
		if err := t.Cache.Set(ctx, key, []byte(texture), cache.TTLTexture); err != nil && t.Logger != nil {
			t.Logger.Warn("texture cache write failed", "texture", id, "error", err)
		}
	}
	return texture, nil
}

// textureContent extracts the texture's path and polygon markup, discarding
// any background shape, together with the texture's own visible region.
func textureContent(texture string) (string, svgdoc.ViewBox, bool) {
	vb, err := svgdoc.GetViewBox(texture)
	if err != nil || vb.Width <= 0 || vb.Height <= 0 {
		return "", svgdoc.ViewBox{}, false
	}
	var b strings.Builder
	for _, tag := range []string{"path", "polygon", "polyline"} {
		svgdoc.ForEachElement(texture, tag, func(s svgdoc.Span) bool {
			b.WriteString(texture[s.Start:s.End])
			return true
		})
	}
	if b.Len() == 0 {
		return "", svgdoc.ViewBox{}, false
	}
	return b.String(), vb, true
}
