package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/khrees2412/jobdeck/internal/applicator"
	"github.com/khrees2412/jobdeck/internal/catalog"
	"github.com/khrees2412/jobdeck/pkg/models"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:     "jobs",
	Aliases: []string{"job"},
	Short:   "Browse and manage job postings",
	Long:    "List, filter, add, import, view, and remove job postings",
}

// facetFlags maps list flags to the facet they filter on.
var facetFlags = []struct {
	flag  string
	facet string
	usage string
}{
	{"type", models.FacetEmploymentType, "Employment type (fulltime, parttime, contract, internship)"},
	{"level", models.FacetExperienceLevel, "Experience level (junior, mid, senior, lead)"},
	{"tag", models.FacetTag, "Tag, e.g. remote or go"},
	{"location", models.FacetLocation, "Location"},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, filtered and paginated",
	Example: `  jobdeck jobs list --type fulltime --tag remote
  jobdeck jobs list --query "employmentType=contract&page=2"
  jobdeck jobs list --page 3 --width 1280`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		query, _ := cmd.Flags().GetString("query")
		page, _ := cmd.Flags().GetInt("page")
		width, _ := cmd.Flags().GetInt("width")

		a.Navigator.Replace(strings.TrimPrefix(query, "?"))
		view := a.JobList()
		for _, f := range facetFlags {
			values, _ := cmd.Flags().GetStringSlice(f.flag)
			for _, v := range values {
				if !a.Binder.State().Selection.Has(f.facet, v) {
					view.ToggleFacet(f.facet, v)
				}
			}
		}
		if page > 0 {
			view.GoToPage(page)
		}

		viewport := a.Config.Viewport
		if width > 0 {
			viewport.Width = width
		}
		trackViewport(ctx, a.Sizer, viewport)

		result, err := view.Page(ctx)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render("Jobs"))
		if len(result.Items) == 0 {
			cmd.Println("No jobs match. Add jobs with 'jobdeck jobs add' or 'jobdeck jobs import FILE'")
		}
		offset := (result.Index - 1) * result.Size
		for i, job := range result.Items {
			marker := " "
			if view.IsSaved(ctx, job.ID) {
				marker = activeStyle.Render("★")
			}
			cmd.Printf("%s %s %s %s\n", marker, labelStyle.Render(fmt.Sprintf("%d.", offset+i+1)), job.Title, mutedStyle.Render("["+job.ID+"]"))
			cmd.Printf("     %s\n", valueStyle.Render(jobLine(job)))
		}

		cmd.Printf("\n%s %d of %d (%d jobs, %d per page)\n", labelStyle.Render("Page"), result.Index, result.TotalPages, result.Total, result.Size)
		if q := a.Navigator.Current(); q != "" {
			cmd.Printf("%s ?%s\n", labelStyle.Render("Query:"), q)
		}
		for _, key := range result.Unrecognized {
			cmd.Println(mutedStyle.Render(fmt.Sprintf("ignoring unknown filter %q", key)))
		}
		for _, f := range facetFlags {
			if opts := result.Options[f.facet]; len(opts) > 0 {
				cmd.Printf("%s %s\n", labelStyle.Render("--"+f.flag+":"), mutedStyle.Render(strings.Join(opts, ", ")))
			}
		}
		return nil
	},
}

var searchJobsCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the catalog directly, one page at a time",
	Long: `Search filters and pages the catalog in one call, without touching the
list query. Useful for scripting.`,
	Example: `  jobdeck jobs search --type contract --size 5
  jobdeck jobs search --tag go --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		sel := models.FacetSelection{}
		for _, f := range facetFlags {
			values, _ := cmd.Flags().GetStringSlice(f.flag)
			for _, v := range values {
				sel.Add(f.facet, v)
			}
		}
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		if size <= 0 {
			size = a.Sizer.PageSize()
		}

		result, err := a.Catalog.Search(cmd.Context(), catalog.Query{Selection: sel, Page: page, PageSize: size})
		if err != nil {
			return fmt.Errorf("search jobs: %w", err)
		}
		for _, job := range result.Items {
			cmd.Printf("%s %s\n", mutedStyle.Render("["+job.ID+"]"), job.Title)
			cmd.Printf("     %s\n", valueStyle.Render(jobLine(job)))
		}
		cmd.Printf("%s %d of %d (%d matches)\n", labelStyle.Render("Page"), result.CurrentPage, result.TotalPages, result.TotalCount)
		return nil
	},
}

// jobLine is the one-line summary shown under a job's title.
func jobLine(job models.JobSummary) string {
	parts := []string{job.CompanyName}
	if job.Location != "" {
		parts = append(parts, job.Location)
	}
	if label := applicator.Label(job.EmploymentType); label != "" {
		parts = append(parts, label)
	}
	if salary := applicator.SalaryText(job); salary != "" {
		parts = append(parts, salary)
	}
	if !job.PostedAt.IsZero() {
		parts = append(parts, "posted "+ago(job.PostedAt))
	}
	return strings.Join(parts, " · ")
}

var addJobCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job posting",
	Example: `  jobdeck jobs add --title "Software Engineer" --company "Acme Inc" --location Berlin --type fulltime --tag go --tag remote
  jobdeck jobs add --id 42 --title "Designer" --company Beta --salary-min 50000 --salary-max 70000 --currency EUR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetString("id")
		title, _ := cmd.Flags().GetString("title")
		company, _ := cmd.Flags().GetString("company")
		location, _ := cmd.Flags().GetString("location")
		empType, _ := cmd.Flags().GetString("type")
		level, _ := cmd.Flags().GetString("level")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		currency, _ := cmd.Flags().GetString("currency")

		if title == "" || company == "" {
			return fmt.Errorf("%w: --title and --company are required", app.ErrInvalidArgument)
		}
		if id == "" {
			id = uuid.NewString()
		}

		job := models.JobSummary{
			ID:              id,
			Title:           title,
			CompanyName:     company,
			Location:        location,
			EmploymentType:  strings.ToLower(empType),
			ExperienceLevel: strings.ToLower(level),
			Tags:            tags,
			Currency:        currency,
		}
		if cmd.Flags().Changed("salary-min") {
			v, _ := cmd.Flags().GetInt("salary-min")
			job.SalaryMin = &v
		}
		if cmd.Flags().Changed("salary-max") {
			v, _ := cmd.Flags().GetInt("salary-max")
			job.SalaryMax = &v
		}

		if err := a.Catalog.Add(cmd.Context(), job); err != nil {
			return fmt.Errorf("save job: %w", err)
		}

		cmd.Printf("✓ Job added: %s at %s (ID: %s)\n", job.Title, job.CompanyName, job.ID)
		return nil
	},
}

var importJobsCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import jobs from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		n, err := a.Catalog.Import(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import after %d jobs: %w", n, err)
		}
		cmd.Printf("✓ Imported %d jobs\n", n)
		return nil
	},
}

var showJobCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show job details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		job, err := getJob(cmd, a, args[0])
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render(job.Title))
		cmd.Printf("%s %s\n", labelStyle.Render("Company:"), job.CompanyName)
		if job.Location != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Location:"), job.Location)
		}
		if job.EmploymentType != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Type:"), applicator.Label(job.EmploymentType))
		}
		if job.ExperienceLevel != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Level:"), applicator.Label(job.ExperienceLevel))
		}
		if salary := applicator.SalaryText(job); salary != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Salary:"), salary)
		}
		if len(job.Tags) > 0 {
			cmd.Printf("%s %s\n", labelStyle.Render("Tags:"), strings.Join(job.Tags, ", "))
		}
		cmd.Printf("%s %s\n", labelStyle.Render("Link:"), job.Href())
		cmd.Printf("%s %s\n", labelStyle.Render("Posted:"), job.PostedAt.Format("Jan 2, 2006"))

		if a.Saved.Contains(ctx, job.ID) {
			cmd.Printf("\n%s\n", activeStyle.Render("★ Saved"))
		}
		if rec, ok := a.Applied.Get(ctx, job.ID); ok {
			cmd.Printf("%s %s (%s)\n", labelStyle.Render("Applied:"), ago(rec.AppliedAt), rec.Status)
		}
		return nil
	},
}

var removeJobCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a job posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := a.Catalog.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("job %s: %w", args[0], app.ErrNotFound)
			}
			return fmt.Errorf("remove job: %w", err)
		}
		cmd.Printf("✓ Job %s removed\n", args[0])
		return nil
	},
}

// getJob looks id up in the catalog, mapping a miss to app.ErrNotFound.
func getJob(cmd *cobra.Command, a *app.App, id string) (models.JobSummary, error) {
	job, err := a.Catalog.Get(cmd.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return job, fmt.Errorf("job %s: %w", id, app.ErrNotFound)
	}
	if err != nil {
		return job, fmt.Errorf("fetch job: %w", err)
	}
	return job, nil
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(searchJobsCmd)
	jobsCmd.AddCommand(addJobCmd)
	jobsCmd.AddCommand(importJobsCmd)
	jobsCmd.AddCommand(showJobCmd)
	jobsCmd.AddCommand(removeJobCmd)

	for _, f := range facetFlags {
		listJobsCmd.Flags().StringSlice(f.flag, nil, f.usage)
	}
	for _, f := range facetFlags {
		searchJobsCmd.Flags().StringSlice(f.flag, nil, f.usage)
	}
	searchJobsCmd.Flags().Int("page", 1, "Page number")
	searchJobsCmd.Flags().Int("size", 0, "Page size (defaults to the viewport's)")

	listJobsCmd.Flags().String("query", "", "Start from a saved query string")
	listJobsCmd.Flags().Int("page", 0, "Page number")
	listJobsCmd.Flags().Int("width", 0, "Viewport width in pixels (overrides the terminal width)")

	addJobCmd.Flags().String("id", "", "Job id (generated when empty)")
	addJobCmd.Flags().String("title", "", "Job title")
	addJobCmd.Flags().String("company", "", "Company name")
	addJobCmd.Flags().String("location", "", "Job location")
	addJobCmd.Flags().String("type", "", "Employment type")
	addJobCmd.Flags().String("level", "", "Experience level")
	addJobCmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	addJobCmd.Flags().Int("salary-min", 0, "Minimum salary")
	addJobCmd.Flags().Int("salary-max", 0, "Maximum salary")
	addJobCmd.Flags().String("currency", "", "Salary currency, e.g. EUR")
}
