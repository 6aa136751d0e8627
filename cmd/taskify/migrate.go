package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/taskify/taskify-api/internal/platform/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateAction("up", "Apply all pending migrations", func(cmd *cobra.Command, m *database.Migrator) error {
			return m.Up(cmd.Context())
		}),
		migrateAction("down", "Roll back the most recent migration", func(cmd *cobra.Command, m *database.Migrator) error {
			return m.Down(cmd.Context())
		}),
		migrateAction("version", "Print the current schema version", func(cmd *cobra.Command, m *database.Migrator) error {
			v, err := m.Version(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		}),
		migrateAction("status", "List migrations and whether they are applied", func(cmd *cobra.Command, m *database.Migrator) error {
			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tAPPLIED\tFILE")
			for _, s := range statuses {
				fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Name)
			}
			return tw.Flush()
		}),
	)
	return cmd
}

func migrateAction(use, short string, run func(*cobra.Command, *database.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			m, err := database.NewMigrator(db, cfg.Database.Driver, slog.Default())
			if err != nil {
				return err
			}
			return run(cmd, m)
		},
	}
}
