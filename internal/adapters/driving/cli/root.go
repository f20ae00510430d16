// Package cli implements the command-line interface.
// Commands are thin adapters: they parse flags, call driving ports and
// format output. All business logic lives in the core services.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
	"github.com/jkkn-ai/assist/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired in by the composition root before Execute runs.
var (
	searchService     driving.SearchService
	assistService     driving.AssistService
	sourceService     driving.SourceService
	documentService   driving.DocumentService
	syncOrchestrator  driving.SyncOrchestrator
	settingsService   driving.SettingsService
	schedulerService  driving.Scheduler
	connectorRegistry driven.ConnectorFactory
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Retrieval-augmented assistant for institutional documents",
	Long: `Assist indexes documents from configured sources and answers
questions grounded on the retrieved passages.

Documents are chunked, embedded and indexed for hybrid (semantic +
keyword) retrieval. Run 'assist source add' to configure a source,
'assist sync' to build the index, then 'assist ask' to query it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		v, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(v)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print retrieval pipeline details to stderr")
}

// Services bundles everything the commands need.
type Services struct {
	Search    driving.SearchService
	Assist    driving.AssistService
	Source    driving.SourceService
	Document  driving.DocumentService
	Sync      driving.SyncOrchestrator
	Settings  driving.SettingsService
	Scheduler driving.Scheduler
	Connector driven.ConnectorFactory
}

// SetServices wires service implementations into the commands.
// Must be called before Execute.
func SetServices(s Services) {
	searchService = s.Search
	assistService = s.Assist
	sourceService = s.Source
	documentService = s.Document
	syncOrchestrator = s.Sync
	settingsService = s.Settings
	schedulerService = s.Scheduler
	connectorRegistry = s.Connector
}

// SetVersion records the build version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	// Optional .env for API keys; absence is not an error.
	_ = godotenv.Load()

	return rootCmd.Execute()
}
