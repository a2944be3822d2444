package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

// AutoMigrateModels lists the models owned by this service. The casbin_rule
// table is created by the policy adapter.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ReservationModel{},
		&models.FlaggedNotificationModel{},
	}
}

// GormAutoMigrateStrategy creates or alters tables from the gorm models.
// It is the only strategy available for sqlite.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.gorm")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	models := AutoMigrateModels()
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	s.logger.Infow("gorm auto migration completed")
	return nil
}

func (s *GormAutoMigrateStrategy) MigrateDown(db *gorm.DB, steps int) error {
	return ErrDownNotSupported
}

// Version is always zero; auto migration keeps no version table.
func (s *GormAutoMigrateStrategy) Version(db *gorm.DB) (int64, bool, error) {
	return 0, false, nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyGormAutoMigrate
}
