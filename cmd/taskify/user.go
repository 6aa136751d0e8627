package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/platform/database"
	"github.com/taskify/taskify-api/internal/platform/sqlstore"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

// newUserCreateCmd creates accounts with any role. Registration over HTTP
// only ever creates USER accounts.
func newUserCreateCmd() *cobra.Command {
	var email, name, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the given role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := domain.Role(strings.ToUpper(role))
			if !r.IsValid() {
				return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
			}

			user, err := domain.NewUser(email, name, password)
			if err != nil {
				return err
			}
			user.Role = r

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			users := sqlstore.NewUserStore(db, cfg.Auth.BCryptCost)
			if err := users.Create(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			slog.Info("user created", slog.String("user_id", user.ID.String()), slog.String("role", string(r)))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "ADMIN, MODERATOR or USER")
	for _, f := range []string{"email", "name", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
