package filter

import (
	"sync"

	"github.com/khrees2412/jobdeck/pkg/models"
)

// FacetBank remembers every facet value it has been shown, so the option
// lists offered to the user do not shrink as the visible jobs are filtered
// down. It is created at application start and owned by the app container;
// Reset empties it at shutdown.
type FacetBank struct {
	engine *Engine

	mu     sync.Mutex
	values map[string][]string
	seen   map[string]map[string]bool
}

// NewFacetBank records values for every facet key the engine knows.
func NewFacetBank(engine *Engine) *FacetBank {
	b := &FacetBank{engine: engine}
	b.Reset()
	return b
}

// Observe records the facet values of jobs.
func (b *FacetBank) Observe(jobs []models.JobSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range []string{models.FacetEmploymentType, models.FacetExperienceLevel, models.FacetTag, models.FacetLocation} {
		extract, ok := b.engine.extractors[key]
		if !ok {
			continue
		}
		for _, job := range jobs {
			for _, v := range extract(job) {
				b.add(key, v)
			}
		}
	}
}

// ObserveOptions records externally supplied option lists, e.g. from the
// catalog's facet-option endpoint.
func (b *FacetBank) ObserveOptions(options map[string][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, values := range options {
		for _, v := range values {
			b.add(key, v)
		}
	}
}

func (b *FacetBank) add(key, value string) {
	if value == "" {
		return
	}
	if b.seen[key] == nil {
		b.seen[key] = make(map[string]bool)
	}
	if b.seen[key][value] {
		return
	}
	b.seen[key][value] = true
	b.values[key] = append(b.values[key], value)
}

// Options returns the values seen for key in first-seen order.
func (b *FacetBank) Options(key string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.values[key]...)
}

// Reset forgets everything.
func (b *FacetBank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string][]string)
	b.seen = make(map[string]map[string]bool)
}
