package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kerhoff/weddingplanner/internal/config"
	"github.com/Kerhoff/weddingplanner/internal/repository/postgres"
	"github.com/Kerhoff/weddingplanner/internal/service"
	"github.com/Kerhoff/weddingplanner/pkg/logger"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "weddingplanner",
		Short:         "AI wedding plan generator with a Telegram companion bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations, then the HTTP API, metrics endpoint, bot and reminder scheduler",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := bootstrap()
				if err != nil {
					return err
				}
				defer app.close()
				app.logger.Info("Migrations applied")
				return nil
			},
		},
		newTokenCommand(),
		newSetTierCommand(),
	)

	return root
}

// app is what every subcommand needs: configuration, a logger and a
// migrated database behind the service layer.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *config.Database
	svc    *service.Service
}

// bootstrap loads configuration, runs checks against it and only then
// connects to the database.
func bootstrap(checks ...func(*config.Config) error) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	svc := service.New(l,
		postgres.NewUserRepository(db.DB),
		postgres.NewWeddingRepository(db.DB),
		postgres.NewPlanRepository(db.DB),
		postgres.NewTaskRepository(db.DB),
		postgres.NewInvitationRepository(db.DB),
		postgres.NewVendorInterestRepository(db.DB),
	)

	return &app{cfg: cfg, logger: l, db: db, svc: svc}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}
