package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/khrees2412/jobdeck/internal/applicator"
	"github.com/khrees2412/jobdeck/pkg/models"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply ID",
	Short: "Apply to a job with a CV",
	Example: `  jobdeck apply 42 --cv-id main --cv-file ~/cv.pdf
  jobdeck apply 42 --cv-id main --cover-letter-file letter.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		job, err := getJob(cmd, a, args[0])
		if err != nil {
			return err
		}

		cvID, _ := cmd.Flags().GetString("cv-id")
		cvTitle, _ := cmd.Flags().GetString("cv-title")
		cvFile, _ := cmd.Flags().GetString("cv-file")
		letter, _ := cmd.Flags().GetString("cover-letter")
		letterFile, _ := cmd.Flags().GetString("cover-letter-file")

		if letterFile != "" {
			data, err := os.ReadFile(letterFile)
			if err != nil {
				return fmt.Errorf("read cover letter: %w", err)
			}
			letter = string(data)
		}
		if cvTitle == "" {
			cvTitle = cvID
		}
		if cvFile != "" {
			cvFile = filepath.Base(cvFile)
		}

		result, err := a.Applicator.Submit(cmd.Context(), job, models.ApplicationPayload{
			CVID:        cvID,
			CVTitle:     cvTitle,
			CVFileName:  cvFile,
			CoverLetter: letter,
		})
		switch {
		case errors.Is(err, applicator.ErrNotSignedIn):
			return fmt.Errorf("%w (set one with 'jobdeck config set --key session.user --value NAME')", err)
		case err != nil:
			return err
		}

		if result.AlreadyApplied {
			cmd.Printf("Already applied to %s %s\n", job.Title, mutedStyle.Render(ago(result.Record.AppliedAt)))
			return nil
		}
		cmd.Printf("✓ Applied to %s at %s with %s\n", job.Title, job.CompanyName, result.Record.CVTitle)
		return nil
	},
}

var appliedCmd = &cobra.Command{
	Use:   "applied",
	Short: "Manage submitted applications",
}

var listAppliedCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		page, _ := cmd.Flags().GetInt("page")
		trackViewport(ctx, a.Sizer, a.Config.Viewport)

		view := a.AppliedView(ctx)
		defer view.Close()

		result := view.Page(page)
		cmd.Println(titleStyle.Render("Applications"))
		if result.Total == 0 {
			cmd.Println("No applications yet. Apply with 'jobdeck apply ID --cv-id CV'")
			return nil
		}
		offset := (result.Index - 1) * result.Size
		for i, rec := range result.Items {
			status := activeStyle.Render(string(rec.Status))
			if rec.Status == models.StatusExpired {
				status = expiredStyle.Render(string(rec.Status))
			}
			cmd.Printf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("%d.", offset+i+1)), rec.Title, status)
			if rec.Company != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Company:"), rec.Company)
			}
			for _, field := range [][2]string{
				{"Location:", rec.LocationText},
				{"Salary:", rec.SalaryText},
				{"Type:", rec.TypeLabel},
				{"Policy:", rec.PolicyLabel},
			} {
				if field[1] != "" {
					cmd.Printf("   %s %s\n", labelStyle.Render(field[0]), field[1])
				}
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("CV:"), rec.CVTitle)
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), rec.ID)
			cmd.Printf("   %s %s\n", labelStyle.Render("Applied:"), mutedStyle.Render(ago(rec.AppliedAt)))
		}
		cmd.Printf("\n%s %d of %d (%d applications)\n", labelStyle.Render("Page"), result.Index, result.TotalPages, result.Total)
		return nil
	},
}

var removeAppliedCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Forget an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		view := a.AppliedView(cmd.Context())
		defer view.Close()

		if !view.Remove(cmd.Context(), args[0]) {
			return fmt.Errorf("application %s: %w", args[0], app.ErrNotFound)
		}
		cmd.Printf("✓ Application %s removed\n", args[0])
		return nil
	},
}

var expireAppliedCmd = &cobra.Command{
	Use:   "expire ID",
	Short: "Mark an application as expired",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		view := a.AppliedView(cmd.Context())
		defer view.Close()

		if !view.Expire(cmd.Context(), args[0]) {
			return fmt.Errorf("application %s: %w", args[0], app.ErrNotFound)
		}
		cmd.Printf("✓ Application %s marked expired\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(appliedCmd)
	appliedCmd.AddCommand(listAppliedCmd)
	appliedCmd.AddCommand(removeAppliedCmd)
	appliedCmd.AddCommand(expireAppliedCmd)

	applyCmd.Flags().String("cv-id", "", "Id of the CV to send (required)")
	applyCmd.Flags().String("cv-title", "", "Display title of the CV")
	applyCmd.Flags().String("cv-file", "", "Path of the CV file")
	applyCmd.Flags().String("cover-letter", "", "Cover letter text")
	applyCmd.Flags().String("cover-letter-file", "", "Read the cover letter from a file")

	listAppliedCmd.Flags().Int("page", 1, "Page number")
}
