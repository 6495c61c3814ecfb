// Package catalog is the job-search collaborator the list views read from.
// The remote search API is modelled by the Searcher interface; SQLiteCatalog
// is a local implementation backed by the jobs table.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/khrees2412/jobdeck/internal/filter"
	"github.com/khrees2412/jobdeck/pkg/models"
)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

// Query is a paged search request.
type Query struct {
	Selection models.FacetSelection
	Page      int
	PageSize  int
}

// Result is one page of search results.
type Result struct {
	Items       []models.JobSummary
	TotalCount  int
	CurrentPage int
	TotalPages  int
}

// Searcher is the job-search API.
type Searcher interface {
	Search(ctx context.Context, q Query) (Result, error)
	// All returns every job, newest first, for client-side filtering.
	All(ctx context.Context) ([]models.JobSummary, error)
	Get(ctx context.Context, id string) (models.JobSummary, error)
	// FacetOptions lists the selectable values of each facet.
	FacetOptions(ctx context.Context) (map[string][]string, error)
}

// SQLiteCatalog reads and writes the jobs table.
type SQLiteCatalog struct {
	db     *sql.DB
	engine *filter.Engine
}

// NewSQLiteCatalog wraps an already migrated database.
func NewSQLiteCatalog(db *sql.DB, engine *filter.Engine) *SQLiteCatalog {
	return &SQLiteCatalog{db: db, engine: engine}
}

const selectJobs = `SELECT id, title, company_name, location, employment_type, experience_level,
		  tags, salary_min, salary_max, currency, posted_at FROM jobs`

// Add inserts or replaces a job.
func (c *SQLiteCatalog) Add(ctx context.Context, job models.JobSummary) error {
	if job.ID == "" || job.Title == "" || job.CompanyName == "" {
		return fmt.Errorf("job id, title and company are required")
	}
	tags, err := json.Marshal(nonNil(job.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	if job.PostedAt.IsZero() {
		job.PostedAt = time.Now()
	}

	query := `INSERT OR REPLACE INTO jobs (id, title, company_name, location, employment_type,
			  experience_level, tags, salary_min, salary_max, currency, posted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = c.db.ExecContext(ctx, query, job.ID, job.Title, job.CompanyName, job.Location,
		job.EmploymentType, job.ExperienceLevel, string(tags), nullInt(job.SalaryMin),
		nullInt(job.SalaryMax), job.Currency, job.PostedAt)
	return err
}

// Import reads a JSON array of jobs from r and adds each one. It returns the
// number imported.
func (c *SQLiteCatalog) Import(ctx context.Context, r io.Reader) (int, error) {
	var jobs []models.JobSummary
	if err := json.NewDecoder(r).Decode(&jobs); err != nil {
		return 0, fmt.Errorf("decode jobs: %w", err)
	}
	for i, job := range jobs {
		if err := c.Add(ctx, job); err != nil {
			return i, fmt.Errorf("job %d (%s): %w", i, job.ID, err)
		}
	}
	return len(jobs), nil
}

func (c *SQLiteCatalog) Get(ctx context.Context, id string) (models.JobSummary, error) {
	row := c.db.QueryRowContext(ctx, selectJobs+` WHERE id=?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return job, ErrNotFound
	}
	return job, err
}

func (c *SQLiteCatalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *SQLiteCatalog) All(ctx context.Context) ([]models.JobSummary, error) {
	rows, err := c.db.QueryContext(ctx, selectJobs+` ORDER BY posted_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.JobSummary{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Search filters every job and returns the requested page, clamped.
func (c *SQLiteCatalog) Search(ctx context.Context, q Query) (Result, error) {
	jobs, err := c.All(ctx)
	if err != nil {
		return Result{}, err
	}
	page := filter.Paginate(c.engine.Filter(jobs, q.Selection), q.Page, q.PageSize)
	return Result{
		Items:       page.Items,
		TotalCount:  page.Total,
		CurrentPage: page.Index,
		TotalPages:  page.TotalPages,
	}, nil
}

func (c *SQLiteCatalog) FacetOptions(ctx context.Context) (map[string][]string, error) {
	jobs, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	bank := filter.NewFacetBank(c.engine)
	bank.Observe(jobs)

	options := make(map[string][]string)
	for _, key := range []string{models.FacetEmploymentType, models.FacetExperienceLevel, models.FacetTag} {
		values := bank.Options(key)
		sort.Strings(values)
		options[key] = values
	}
	return options, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (models.JobSummary, error) {
	var (
		job                                models.JobSummary
		location, empType, level, currency sql.NullString
		tags                               string
		salaryMin, salaryMax               sql.NullInt64
	)
	err := s.Scan(&job.ID, &job.Title, &job.CompanyName, &location, &empType, &level,
		&tags, &salaryMin, &salaryMax, &currency, &job.PostedAt)
	if err != nil {
		return job, err
	}
	job.Location = location.String
	job.EmploymentType = empType.String
	job.ExperienceLevel = level.String
	job.Currency = currency.String
	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		job.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		job.SalaryMax = &v
	}
	if err := json.Unmarshal([]byte(tags), &job.Tags); err != nil {
		job.Tags = nil
	}
	return job, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
