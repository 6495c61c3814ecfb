package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khrees2412/jobdeck/internal/app"
	"github.com/spf13/cobra"
)

// skipApp marks commands that only touch the config file.
const skipApp = "skip-app"

// opened is the App built for the running command, closed by Execute.
var opened *app.App

var rootCmd = &cobra.Command{
	Use:   "jobdeck",
	Short: "Browse, save and track job applications from the terminal",
	Long: `jobdeck keeps a filterable job list, your saved jobs and your applications
in sync across every terminal you have open.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipApp] == "true" {
			return nil
		}

		application, err := app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		opened = application

		cmd.SetContext(app.WithApp(cmd.Context(), application))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	if opened != nil {
		opened.Close()
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// appFrom returns the App stored in the command context.
func appFrom(cmd *cobra.Command) (*app.App, error) {
	application := app.FromContext(cmd.Context())
	if application == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return application, nil
}
