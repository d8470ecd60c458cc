package main

import (
	"encoding/json"
	"io"
	"os"

	"convo-insights-go/internal/config"
	"convo-insights-go/internal/logger"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Conversation insights from the command line",
	Long:  "Loads a support conversation export, normalizes it and prints dashboard aggregates, dataset summaries or imports it into a local SQLite store.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		log = logger.New(logger.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: cmd.ErrOrStderr(),
		}).WithComponent("report")
		return nil
	},
	SilenceUsage: true,
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "write output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
