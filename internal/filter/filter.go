// Package filter narrows a job list by facet selection and slices it into
// pages. Everything here is a pure function of its inputs.
package filter

import (
	"strings"

	"github.com/khrees2412/jobdeck/pkg/models"
)

// Extractor returns the values a job has for one facet.
type Extractor func(models.JobSummary) []string

// Engine filters jobs using one extractor per facet key.
type Engine struct {
	extractors map[string]Extractor
}

// NewEngine returns an engine with the default job facets registered:
// employmentType, experienceLevel, tag (also accepted as "tags") and
// location.
func NewEngine() *Engine {
	e := &Engine{extractors: make(map[string]Extractor)}
	e.Register(models.FacetEmploymentType, func(j models.JobSummary) []string {
		return single(j.EmploymentType)
	})
	e.Register(models.FacetExperienceLevel, func(j models.JobSummary) []string {
		return single(j.ExperienceLevel)
	})
	tags := func(j models.JobSummary) []string { return j.Tags }
	e.Register(models.FacetTag, tags)
	e.Register("tags", tags)
	e.Register(models.FacetLocation, func(j models.JobSummary) []string {
		return single(j.Location)
	})
	return e
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// Register adds or replaces the extractor for key.
func (e *Engine) Register(key string, fn Extractor) {
	e.extractors[key] = fn
}

// Knows reports whether key has an extractor.
func (e *Engine) Knows(key string) bool {
	_, ok := e.extractors[key]
	return ok
}

// Filter keeps the jobs that, for every selected facet with an extractor,
// have at least one value in the selected set. Facets with no selected values
// or no extractor do not constrain. Values compare case-insensitively. The
// result keeps the order of jobs.
func (e *Engine) Filter(jobs []models.JobSummary, sel models.FacetSelection) []models.JobSummary {
	type constraint struct {
		extract Extractor
		allowed map[string]bool
	}
	var constraints []constraint
	for key, values := range sel {
		extract, ok := e.extractors[key]
		if !ok || len(values) == 0 {
			continue
		}
		allowed := make(map[string]bool, len(values))
		for _, v := range values {
			allowed[strings.ToLower(v)] = true
		}
		constraints = append(constraints, constraint{extract: extract, allowed: allowed})
	}

	out := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		keep := true
		for _, c := range constraints {
			if !intersects(c.extract(job), c.allowed) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, job)
		}
	}
	return out
}

func intersects(values []string, allowed map[string]bool) bool {
	for _, v := range values {
		if allowed[strings.ToLower(v)] {
			return true
		}
	}
	return false
}
