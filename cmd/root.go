package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docanalyzer/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docanalyzer",
	Short: "Document analyzer - extract text and describe embedded images with an LLM",
	Long: `Document analyzer extracts the text of uploaded documents and, when
enabled, sends embedded PDF images to a vision-capable LLM so their
descriptions appear inline in the extracted text, in reading order.

Use "analyze" for one-shot command-line processing or "serve" for the
single-page web interface.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Document analyzer executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
