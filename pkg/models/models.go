package models

import (
	"fmt"
	"time"
)

// JobSummary is a job posting as returned by the job-search collaborator.
// It is never mutated by the client.
type JobSummary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CompanyName     string    `json:"companyName"`
	Location        string    `json:"location"`
	EmploymentType  string    `json:"employmentType"`  // fulltime, parttime, contract, internship
	ExperienceLevel string    `json:"experienceLevel"` // junior, mid, senior, lead
	Tags            []string  `json:"tags"`
	SalaryMin       *int      `json:"salaryMin,omitempty"`
	SalaryMax       *int      `json:"salaryMax,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	PostedAt        time.Time `json:"postedAt"`
}

// Href returns the navigable reference for the job.
func (j JobSummary) Href() string {
	return JobHref(j.ID)
}

// JobHref derives the default navigable reference for a job id.
func JobHref(id string) string {
	return fmt.Sprintf("/jobs/%s", id)
}

// SavedRecord is a bookmarked job in the saved-jobs collection
type SavedRecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Company  string    `json:"company"`
	Location string    `json:"location,omitempty"`
	SavedAt  time.Time `json:"savedAt"`
	Href     string    `json:"href"`
}

// RecordID implements storage.Record.
func (r SavedRecord) RecordID() string { return r.ID }

// NewSavedRecord builds the record created when a job is toggled "saved".
func NewSavedRecord(job JobSummary, now time.Time) SavedRecord {
	return SavedRecord{
		ID:       job.ID,
		Title:    job.Title,
		Company:  job.CompanyName,
		Location: job.Location,
		SavedAt:  now,
		Href:     job.Href(),
	}
}

// ApplicationStatus is the lifecycle state of an applied record.
type ApplicationStatus string

const (
	StatusActive  ApplicationStatus = "active"
	StatusExpired ApplicationStatus = "expired"
)

// AppliedRecord is a submitted application in the applied-jobs collection.
// AppliedAt is set once at creation and never changes.
type AppliedRecord struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Company   string            `json:"company,omitempty"`
	AppliedAt time.Time         `json:"appliedAt"`
	Status    ApplicationStatus `json:"status"`

	LocationText string `json:"locationText,omitempty"`
	SalaryText   string `json:"salaryText,omitempty"`
	TypeLabel    string `json:"typeLabel,omitempty"`
	PolicyLabel  string `json:"policyLabel,omitempty"`
	Href         string `json:"href,omitempty"`

	CVID        string `json:"cvId"`
	CVTitle     string `json:"cvTitle"`
	CVFileName  string `json:"cvFileName"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

// RecordID implements storage.Record.
func (r AppliedRecord) RecordID() string { return r.ID }

// ApplicationPayload is what the candidate submits with an application
type ApplicationPayload struct {
	CVID        string
	CVTitle     string
	CVFileName  string
	CoverLetter string
}
