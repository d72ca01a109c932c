// Package cli provides the command-line driving adapter. Commands talk
// to the core exclusively through driving port interfaces.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/doccloud/retrieval/internal/core/ports/driving"
	"github.com/doccloud/retrieval/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// contextService is injected by SetServices before Execute runs.
var contextService driving.ContextService

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Course-aware context retrieval for tutoring sessions",
	Long: `retrieval builds grounded context bundles from course materials.
Queries are ranked with hybrid lexical and semantic scoring, fused and
diversified, then assembled into a token-budgeted bundle with citations.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the driving services used by the commands.
func SetServices(ctxSvc driving.ContextService) {
	contextService = ctxSvc
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
