package cmd

import (
	"fmt"

	"hoshikuzu/database"
	"hoshikuzu/repository"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <data-file>",
	Short: "Copy a JSON data file into the postgres storage backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := migrationURL()
		if err != nil {
			return err
		}

		doc, err := repository.ReadDocument(args[0])
		if err != nil {
			return err
		}

		if err := database.MigrateUp(url); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		db, err := database.NewConnection(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		stats, err := repository.ImportDocument(cmd.Context(), db, doc)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"file":    args[0],
			"values":  stats.Values,
			"rooms":   stats.Rooms,
			"tickets": stats.Tickets,
		}).Info("Import completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
