package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/infrastructure/config"
	"github.com/tourbook/tourbook/internal/infrastructure/database"
	"github.com/tourbook/tourbook/internal/infrastructure/migration"
	"github.com/tourbook/tourbook/internal/shared/biztime"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

const defaultScriptsPath = "./internal/infrastructure/migration/scripts"

var (
	env          string
	configPath   string
	strategyName string
	name         string
	steps        int
	scriptsPath  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply and roll back schema migrations, show the current version and create new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&strategyName, "strategy", "s", "",
		"Migration strategy: goose, golang-migrate or auto (default: goose for mysql, auto for sqlite)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create goose and golang-migrate files for a new migration in the source tree.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration in lower_snake_case (required)")
	cmd.Flags().StringVar(&scriptsPath, "scripts", defaultScriptsPath, "Migration scripts directory")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath, env)
	}
	return config.Load(env)
}

// initEnv loads configuration, the logger and the business timezone, then
// opens the database.
func initEnv() (*config.Config, *gorm.DB, logger.Interface, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().Named("migrate")

	if err := biztime.Init(cfg.Timezone); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	db, err := database.Init(cfg.Database, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, db, log, nil
}

func newManager(cfg *config.Config, log logger.Interface) (*migration.Manager, error) {
	strategy, err := migration.NewStrategy(strategyName, cfg.Database.Driver, log)
	if err != nil {
		return nil, err
	}
	return migration.NewManager(strategy, log), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, db, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	manager, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	log.Infow("running up migrations", "environment", env, "strategy", manager.GetStrategy().GetName())
	if err := manager.Up(db); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, db, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	manager, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	log.Infow("running down migrations", "environment", env, "steps", steps)
	if err := manager.Down(db, steps); err != nil {
		if errors.Is(err, migration.ErrDownNotSupported) {
			return fmt.Errorf("strategy %s cannot roll back: %w", manager.GetStrategy().GetName(), err)
		}
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, db, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	manager, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	status, err := manager.Status(db)
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Strategy:        %s\n", status.Strategy)
	fmt.Fprintf(out, "  Current Version: %d\n", status.Version)
	if status.Dirty {
		fmt.Fprintf(out, "  Dirty:           true (fix the failed migration, then force the version)\n")
	}

	if goose, ok := manager.GetStrategy().(*migration.GooseStrategy); ok {
		if err := goose.Status(db); err != nil {
			return fmt.Errorf("failed to get detailed status: %w", err)
		}
	}

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger().Named("migrate")

	dir, err := filepath.Abs(scriptsPath)
	if err != nil {
		return fmt.Errorf("failed to resolve scripts path: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("scripts directory %s: %w", dir, err)
	}

	files, err := migration.NewGenerator(dir, log).CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", f)
	}
	return nil
}
