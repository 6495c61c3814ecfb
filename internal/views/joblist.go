// Package views coordinates the job list and the saved and applied
// management views on top of the stores, the bus and the query binder.
package views

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/khrees2412/jobdeck/internal/catalog"
	"github.com/khrees2412/jobdeck/internal/filter"
	"github.com/khrees2412/jobdeck/internal/pagesize"
	"github.com/khrees2412/jobdeck/internal/querystate"
	"github.com/khrees2412/jobdeck/internal/storage"
	"github.com/khrees2412/jobdeck/pkg/models"
)

// JobListDeps are the collaborators of a JobListView.
type JobListDeps struct {
	Catalog catalog.Searcher
	Binder  *querystate.Binder
	Engine  *filter.Engine
	Sizer   *pagesize.Sizer
	Bank    *filter.FacetBank
	Saved   *storage.SavedJobs
}

// JobListView is the filterable, paginated list of all jobs.
type JobListView struct {
	deps JobListDeps
	now  func() time.Time
}

func NewJobListView(deps JobListDeps) *JobListView {
	return &JobListView{deps: deps, now: time.Now}
}

// JobListPage is everything needed to render one page of the job list.
type JobListPage struct {
	filter.Page[models.JobSummary]
	Selection    models.FacetSelection
	Unrecognized []string
	// Options holds every value seen so far for each facet.
	Options map[string][]string
}

// Page derives the visible page from the current query: decode, filter,
// clamp, paginate. Nothing is cached between calls.
func (v *JobListView) Page(ctx context.Context) (JobListPage, error) {
	st := v.deps.Binder.State()

	jobs, err := v.deps.Catalog.All(ctx)
	if err != nil {
		return JobListPage{}, fmt.Errorf("failed to load jobs: %w", err)
	}
	if options, err := v.deps.Catalog.FacetOptions(ctx); err != nil {
		slog.Warn("facet options unavailable", "err", err)
	} else {
		v.deps.Bank.ObserveOptions(options)
	}
	v.deps.Bank.Observe(jobs)

	filtered := v.deps.Engine.Filter(jobs, st.Selection)
	page := filter.Paginate(filtered, st.Page, v.deps.Sizer.PageSize())

	options := make(map[string][]string)
	for _, key := range []string{models.FacetEmploymentType, models.FacetExperienceLevel, models.FacetTag, models.FacetLocation} {
		options[key] = v.deps.Bank.Options(key)
	}

	return JobListPage{
		Page:         page,
		Selection:    st.Selection,
		Unrecognized: v.deps.Binder.Unrecognized(st.Selection),
		Options:      options,
	}, nil
}

// ToggleFacet flips one facet value in the query.
func (v *JobListView) ToggleFacet(key, value string) querystate.State {
	return v.deps.Binder.ApplyFacetToggle(key, value)
}

// ClearFacet drops every value of one facet from the query.
func (v *JobListView) ClearFacet(key string) querystate.State {
	return v.deps.Binder.ClearFacet(key)
}

// GoToPage moves the query to page n. Out-of-range pages are clamped on the
// next read.
func (v *JobListView) GoToPage(n int) querystate.State {
	return v.deps.Binder.SetPage(n)
}

// ToggleSave saves or unsaves job and reports whether it is saved afterwards.
func (v *JobListView) ToggleSave(ctx context.Context, job models.JobSummary) bool {
	return storage.ToggleSaved(ctx, v.deps.Saved, job, v.now())
}

func (v *JobListView) IsSaved(ctx context.Context, id string) bool {
	return v.deps.Saved.Contains(ctx, id)
}
