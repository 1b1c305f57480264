package pipeline

import (
	"context"
	"math/rand"

	"github.com/motifhq/motif/pkg/store"
)

// job is one pending (template, descriptor) combination.
type job struct {
	template store.Template
	desc     Descriptor
}

// Pager serves a shuffled batch of variant combinations one fixed-size page
// at a time. Rendering happens lazily per page; a failing combination is
// logged, counted, and skipped so a page is always as full as the remaining
// work allows.
type Pager struct {
	runner *Runner
	opts   Options
	rng    *rand.Rand
	jobs   []job
	pos    int
	bases  map[string]*BaseResult
	stats  Stats
}

func newPager(r *Runner, opts Options, jobs []job, rng *rand.Rand) *Pager {
	return &Pager{
		runner: r,
		opts:   opts,
		rng:    rng,
		jobs:   jobs,
		bases:  make(map[string]*BaseResult),
	}
}

// Next renders and returns the next page. The second return value reports
// exhaustion: true once every combination has been served, at which point the
// returned page may be short or empty.
func (p *Pager) Next(ctx context.Context) ([]Variant, bool) {
	page := make([]Variant, 0, p.opts.PageSize)
	for len(page) < p.opts.PageSize && p.pos < len(p.jobs) {
		j := p.jobs[p.pos]
		p.pos++

		base, ok := p.bases[j.template.ID]
		if !ok {
			var err error
			base, err = p.runner.BaseResult(ctx, j.template, p.opts.Text, p.opts.Refresh)
			if err != nil {
				p.opts.Logger.Warn("skipping template", "template", j.template.ID, "error", err)
				p.stats.Skipped++
				p.bases[j.template.ID] = nil
				continue
			}
			p.bases[j.template.ID] = base
			p.stats.Templates++
		}
		if base == nil {
			// Template already failed earlier in this batch.
			p.stats.Skipped++
			continue
		}

		v, err := p.runner.Variant(ctx, base, j.desc, p.rng)
		if err != nil {
			p.opts.Logger.Warn("skipping variant", "descriptor", j.desc.Encode(), "error", err)
			p.stats.Skipped++
			continue
		}
		page = append(page, *v)
		p.stats.Produced++
	}
	return page, p.pos >= len(p.jobs)
}

// Remaining reports how many combinations have not been served yet.
func (p *Pager) Remaining() int {
	return len(p.jobs) - p.pos
}

// Stats returns the batch statistics accumulated so far.
func (p *Pager) Stats() Stats {
	return p.stats
}
