package cmd

import (
	"errors"
	"time"

	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/khrees2412/jobdeck/pkg/models"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow saved and applied jobs as other terminals change them",
	Long: `Watch keeps the saved and applied lists open and prints them again whenever
another jobdeck process changes them. Needs the file or redis store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if err := a.Watch(ctx); err != nil {
			if errors.Is(err, app.ErrNoExternalSignal) {
				cmd.Printf("The %s store cannot signal changes from other processes; switch with 'jobdeck config set --key store.driver --value file'\n", a.Config.Store.Driver)
				return nil
			}
			return err
		}

		saved := a.SavedView(ctx)
		defer saved.Close()
		applied := a.AppliedView(ctx)
		defer applied.Close()

		saved.OnChange(func(records []models.SavedRecord) {
			cmd.Printf("%s %s %d saved jobs\n", mutedStyle.Render(time.Now().Format("15:04:05")), labelStyle.Render("saved:"), len(records))
			for _, rec := range records {
				cmd.Printf("   %s %s\n", rec.Title, mutedStyle.Render(rec.Company))
			}
		})
		applied.OnChange(func(records []models.AppliedRecord) {
			cmd.Printf("%s %s %d applications\n", mutedStyle.Render(time.Now().Format("15:04:05")), labelStyle.Render("applied:"), len(records))
			for _, rec := range records {
				cmd.Printf("   %s %s\n", rec.Title, mutedStyle.Render(string(rec.Status)))
			}
		})

		cmd.Printf("Watching %s store (%d saved, %d applied). Press Ctrl+C to stop.\n",
			a.Config.Store.Driver, len(saved.Records()), len(applied.Records()))
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
