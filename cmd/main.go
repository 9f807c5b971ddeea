package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"hospital-scheduling/cmd/bootstrap"
	"hospital-scheduling/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-scheduling",
		Short: "Hospital appointment scheduling and revenue allocation",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize application with all dependencies
			app, err := bootstrap.New()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			// Run the application
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	withMigrator := func(run func(m *bootstrap.Migrator, log *logrus.Logger) error) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		m, err := bootstrap.NewMigrator(cfg.DB)
		if err != nil {
			return err
		}
		defer m.Close()
		return run(m, logrus.StandardLogger())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *bootstrap.Migrator, log *logrus.Logger) error {
				return m.Up(log)
			})
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *bootstrap.Migrator, log *logrus.Logger) error {
				return m.Down(steps, log)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version: %w", err)
			}
			return withMigrator(func(m *bootstrap.Migrator, log *logrus.Logger) error {
				return m.Force(version, log)
			})
		},
	})

	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Complete bookings whose consultation time has elapsed, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Sweeper == nil {
				return fmt.Errorf("completion policy %q does not complete elapsed bookings", app.Config.Booking.CompletionPolicy)
			}
			completed := app.Sweeper.RunOnce()
			fmt.Printf("Completed %d booking(s).\n", completed)
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for an existing user (development)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			app, err := bootstrap.New()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			token, err := app.Auth.IssueToken(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Printf("role=%s expires_in=%ds\n%s\n", token.Role, token.ExpiresIn, token.AccessToken)
			return nil
		},
	}
}
