package main

import (
	"convo-insights-go/internal/config"
	"convo-insights-go/internal/dataset"
	"convo-insights-go/internal/store"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var importFlags struct {
	input string
	db    string
}

const defaultImportDB = "insights.db"

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an export file into the local SQLite store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dbPath := importFlags.db
		if dbPath == "" && cfg.Source.Kind == config.SourceSQLite {
			dbPath = cfg.Source.Path
		}
		if dbPath == "" {
			dbPath = defaultImportDB
		}

		raws, err := dataset.LoadFile(importFlags.input)
		if err != nil {
			return eris.Wrap(err, "read input")
		}

		st, err := store.NewSQLite(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		saved, err := st.Save(ctx, raws)
		if err != nil {
			return err
		}
		total, err := st.Count(ctx)
		if err != nil {
			return err
		}

		log.WithField("saved", saved).
			WithField("total", total).
			WithField("db", dbPath).
			Info("import complete")
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFlags.input, "input", "", "export file (.csv, .json, .xlsx)")
	importCmd.Flags().StringVar(&importFlags.db, "db", "", "SQLite path; defaults to source.path for sqlite sources")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}
