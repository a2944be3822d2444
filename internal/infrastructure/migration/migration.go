package migration

import (
	"embed"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/shared/logger"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyGoose           = "goose"
	StrategyGolangMigrate   = "golang-migrate"
	StrategyGormAutoMigrate = "auto"
)

const (
	gooseScriptsDir   = "scripts/goose"
	migrateScriptsDir = "scripts/migrate"
)

//go:embed scripts
var scriptsFS embed.FS

// NewStrategy picks a migration strategy by name. An empty name selects goose
// for MySQL and auto migration for sqlite. The SQL scripts are MySQL only.
func NewStrategy(name, driver string, log logger.Interface) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	sqlite := strings.EqualFold(driver, "sqlite")

	if name == "" {
		name = StrategyGoose
		if sqlite {
			name = StrategyGormAutoMigrate
		}
	}

	switch name {
	case StrategyGormAutoMigrate:
		return NewGormAutoMigrateStrategy(log), nil
	case StrategyGoose, StrategyGolangMigrate:
		if sqlite {
			return nil, fmt.Errorf("strategy %s requires mysql, use %s for sqlite", name, StrategyGormAutoMigrate)
		}
		if name == StrategyGoose {
			return NewGooseStrategy(scriptsFS, gooseScriptsDir, log), nil
		}
		return NewGolangMigrateStrategy(scriptsFS, migrateScriptsDir, log), nil
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", name)
	}
}

// Manager runs migrations with the configured strategy
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

func NewManager(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Up applies pending migrations
func (m *Manager) Up(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps migrations
func (m *Manager) Down(db *gorm.DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return m.strategy.MigrateDown(db, steps)
}

// Status describes the applied schema version
type Status struct {
	Strategy string `yaml:"strategy"`
	Version  int64  `yaml:"version"`
	Dirty    bool   `yaml:"dirty"`
}

func (m *Manager) Status(db *gorm.DB) (*Status, error) {
	version, dirty, err := m.strategy.Version(db)
	if err != nil {
		return nil, err
	}
	return &Status{Strategy: m.strategy.GetName(), Version: version, Dirty: dirty}, nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
