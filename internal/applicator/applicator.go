package applicator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/khrees2412/jobdeck/internal/storage"
	"github.com/khrees2412/jobdeck/pkg/models"
)

var (
	ErrNotSignedIn = errors.New("sign in to apply")
	ErrMissingCV   = errors.New("a CV is required to apply")
	ErrNotRecorded = errors.New("application could not be recorded")
)

// Session reports whether the current user may submit applications.
type Session interface {
	CanApply() bool
}

// UserSession is signed in whenever User is set.
type UserSession struct {
	User string
}

func (s UserSession) CanApply() bool { return strings.TrimSpace(s.User) != "" }

// Result describes the outcome of Submit.
type Result struct {
	Record         models.AppliedRecord
	AlreadyApplied bool
}

// Applicator records job applications in the applied-jobs collection.
type Applicator struct {
	applied *storage.AppliedJobs
	session Session
	now     func() time.Time
}

func New(applied *storage.AppliedJobs, session Session) *Applicator {
	return &Applicator{applied: applied, session: session, now: time.Now}
}

// Submit applies to job with payload. A job can be applied to once; later
// submissions return the stored record with AlreadyApplied set.
func (a *Applicator) Submit(ctx context.Context, job models.JobSummary, payload models.ApplicationPayload) (Result, error) {
	if a.session == nil || !a.session.CanApply() {
		return Result{}, ErrNotSignedIn
	}
	if strings.TrimSpace(payload.CVID) == "" {
		return Result{}, ErrMissingCV
	}
	if job.ID == "" {
		return Result{}, fmt.Errorf("job has no id")
	}

	if existing, ok := a.applied.Get(ctx, job.ID); ok {
		return Result{Record: existing, AlreadyApplied: true}, nil
	}

	rec := NewAppliedRecord(job, payload, a.now())
	if !a.applied.UpsertFront(ctx, rec) {
		// Lost a race with another writer; report what is stored.
		if existing, ok := a.applied.Get(ctx, job.ID); ok {
			return Result{Record: existing, AlreadyApplied: true}, nil
		}
		return Result{}, fmt.Errorf("%w: job %s", ErrNotRecorded, job.ID)
	}
	return Result{Record: rec}, nil
}

// Expire marks the application for id as expired. AppliedAt is kept.
func (a *Applicator) Expire(ctx context.Context, id string) bool {
	return a.applied.Update(ctx, id, func(r models.AppliedRecord) models.AppliedRecord {
		r.Status = models.StatusExpired
		return r
	})
}

// NewAppliedRecord builds the active record for an application submitted at now.
func NewAppliedRecord(job models.JobSummary, payload models.ApplicationPayload, now time.Time) models.AppliedRecord {
	return models.AppliedRecord{
		ID:           job.ID,
		Title:        job.Title,
		Company:      job.CompanyName,
		AppliedAt:    now,
		Status:       models.StatusActive,
		LocationText: job.Location,
		SalaryText:   SalaryText(job),
		TypeLabel:    Label(job.EmploymentType),
		PolicyLabel:  PolicyLabel(job.Tags),
		Href:         job.Href(),
		CVID:         payload.CVID,
		CVTitle:      payload.CVTitle,
		CVFileName:   payload.CVFileName,
		CoverLetter:  payload.CoverLetter,
	}
}

// SalaryText formats the salary range, e.g. "60,000 - 80,000 EUR".
func SalaryText(job models.JobSummary) string {
	var text string
	switch {
	case job.SalaryMin != nil && job.SalaryMax != nil:
		text = humanize.Comma(int64(*job.SalaryMin)) + " - " + humanize.Comma(int64(*job.SalaryMax))
	case job.SalaryMin != nil:
		text = "from " + humanize.Comma(int64(*job.SalaryMin))
	case job.SalaryMax != nil:
		text = "up to " + humanize.Comma(int64(*job.SalaryMax))
	default:
		return ""
	}
	if job.Currency != "" {
		text += " " + strings.ToUpper(job.Currency)
	}
	return text
}

// Label turns a facet value such as "part-time" into "Part Time".
func Label(value string) string {
	value = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	return cases.Title(language.English).String(value)
}

var policies = []string{"remote", "hybrid", "onsite"}

// PolicyLabel picks the work policy out of a job's tags.
func PolicyLabel(tags []string) string {
	for _, policy := range policies {
		for _, tag := range tags {
			if strings.EqualFold(tag, policy) {
				return Label(policy)
			}
		}
	}
	return ""
}
