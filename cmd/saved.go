package cmd

import (
	"fmt"

	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save ID",
	Short: "Save a job, or unsave it if already saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		job, err := getJob(cmd, a, args[0])
		if err != nil {
			return err
		}

		if a.JobList().ToggleSave(cmd.Context(), job) {
			cmd.Printf("★ Saved %s at %s\n", job.Title, job.CompanyName)
		} else {
			cmd.Printf("✓ Removed %s from saved jobs\n", job.Title)
		}
		return nil
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved jobs",
}

var listSavedCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved jobs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		page, _ := cmd.Flags().GetInt("page")
		trackViewport(ctx, a.Sizer, a.Config.Viewport)

		view := a.SavedView(ctx)
		defer view.Close()

		result := view.Page(page)
		cmd.Println(titleStyle.Render("Saved Jobs"))
		if result.Total == 0 {
			cmd.Println("No saved jobs. Save one with 'jobdeck save ID'")
			return nil
		}
		offset := (result.Index - 1) * result.Size
		for i, rec := range result.Items {
			cmd.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("%d.", offset+i+1)), rec.Title)
			cmd.Printf("   %s %s\n", labelStyle.Render("Company:"), rec.Company)
			if rec.Location != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Location:"), rec.Location)
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), rec.ID)
			cmd.Printf("   %s %s\n", labelStyle.Render("Saved:"), mutedStyle.Render(ago(rec.SavedAt)))
		}
		cmd.Printf("\n%s %d of %d (%d saved)\n", labelStyle.Render("Page"), result.Index, result.TotalPages, result.Total)
		return nil
	},
}

var removeSavedCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a saved job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		view := a.SavedView(cmd.Context())
		defer view.Close()

		if !view.Remove(cmd.Context(), args[0]) {
			return fmt.Errorf("saved job %s: %w", args[0], app.ErrNotFound)
		}
		cmd.Printf("✓ Saved job %s removed\n", args[0])
		return nil
	},
}

var clearSavedCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every saved job",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		view := a.SavedView(cmd.Context())
		defer view.Close()

		n := len(view.Records())
		view.Clear(cmd.Context())
		cmd.Printf("✓ Cleared %d saved jobs\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(listSavedCmd)
	savedCmd.AddCommand(removeSavedCmd)
	savedCmd.AddCommand(clearSavedCmd)

	listSavedCmd.Flags().Int("page", 1, "Page number")
}
