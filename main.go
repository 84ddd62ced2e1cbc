package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RubachokBoss/thesisflow/internal/app"
	"github.com/RubachokBoss/thesisflow/internal/config"
	"github.com/RubachokBoss/thesisflow/internal/database"
	"github.com/RubachokBoss/thesisflow/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateDirection := migrateCmd.String("direction", "up", "direction of migration (up/down)")
	migrateForce := migrateCmd.Int("force", -1, "force the schema version and clear the dirty flag")

	adminCmd := flag.NewFlagSet("create-admin", flag.ExitOnError)
	adminEmail := adminCmd.String("email", "", "administrator e-mail")
	adminPassword := adminCmd.String("password", "", "administrator password")
	adminName := adminCmd.String("name", "Administrator", "administrator display name")

	bootLog := logger.New()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			migrateCmd.Parse(os.Args[2:])
			runMigrations(cfg, log, *migrateDirection, *migrateForce)
			return
		case "create-admin":
			adminCmd.Parse(os.Args[2:])
			createAdmin(cfg, log, *adminEmail, *adminPassword, *adminName)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q, expected migrate or create-admin\n", os.Args[1])
			os.Exit(2)
		}
	}

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}

	log.Info().Msg("ThesisFlow stopped")
}

func runMigrations(cfg *config.Config, log zerolog.Logger, direction string, force int) {
	migrator, err := database.NewMigrator(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}

	if force >= 0 {
		if err := migrator.Force(force); err != nil {
			log.Fatal().Err(err).Int("version", force).Msg("Failed to force migration version")
		}
		log.Info().Int("version", force).Msg("Migration version forced")
		return
	}

	switch direction {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	default:
		log.Fatal().Msg("Invalid migration direction. Use 'up' or 'down'")
	}
}

func createAdmin(cfg *config.Config, log zerolog.Logger, email, password, name string) {
	user, err := app.CreateAdmin(context.Background(), cfg, log, email, password, name)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to create administrator")
		os.Exit(1)
	}

	log.Info().Str("id", user.ID).Str("email", user.Email).Msg("Administrator created")
}
