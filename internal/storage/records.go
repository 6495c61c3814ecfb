package storage

import (
	"context"
	"time"

	"github.com/khrees2412/jobdeck/internal/syncbus"
	"github.com/khrees2412/jobdeck/pkg/models"
)

type (
	SavedJobs   = Collection[models.SavedRecord]
	AppliedJobs = Collection[models.AppliedRecord]
)

// NewSavedJobs returns the saved-jobs collection. Re-saving an id replaces the
// record in place.
func NewSavedJobs(medium Medium, bus *syncbus.Bus) *SavedJobs {
	return NewCollection(medium, bus, CollectionConfig[models.SavedRecord]{
		Key:       syncbus.SavedJobsKey,
		Policy:    ReplaceInPlace,
		Normalize: normalizeSaved,
	})
}

// NewAppliedJobs returns the applied-jobs collection. An id is only ever
// written once.
func NewAppliedJobs(medium Medium, bus *syncbus.Bus) *AppliedJobs {
	return NewCollection(medium, bus, CollectionConfig[models.AppliedRecord]{
		Key:       syncbus.AppliedJobsKey,
		Policy:    KeepExisting,
		Normalize: normalizeApplied,
	})
}

// ToggleSaved saves job with SavedAt = now, or unsaves it when already saved.
// It reports whether the job is saved afterwards.
func ToggleSaved(ctx context.Context, saved *SavedJobs, job models.JobSummary, now time.Time) bool {
	return saved.Toggle(ctx, models.NewSavedRecord(job, now))
}

func normalizeSaved(r models.SavedRecord) (models.SavedRecord, bool) {
	if r.ID == "" {
		return r, false
	}
	if r.Href == "" {
		r.Href = models.JobHref(r.ID)
	}
	return r, true
}

func normalizeApplied(r models.AppliedRecord) (models.AppliedRecord, bool) {
	if r.ID == "" {
		return r, false
	}
	switch r.Status {
	case models.StatusActive, models.StatusExpired:
	default:
		r.Status = models.StatusActive
	}
	if r.Href == "" {
		r.Href = models.JobHref(r.ID)
	}
	return r, true
}
