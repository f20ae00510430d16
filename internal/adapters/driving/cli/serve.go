package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background scheduler",
	Long: `Runs the background scheduler in the foreground.

The scheduler triggers the periodic ingestion sweep and index snapshot
saves at their configured intervals. Stop with Ctrl-C.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Scheduler running. Press Ctrl-C to stop.")

	err := schedulerService.Start(ctx)
	if stopErr := schedulerService.Stop(); stopErr != nil {
		cmd.Printf("Warning: scheduler shutdown: %v\n", stopErr)
	}
	return err
}
