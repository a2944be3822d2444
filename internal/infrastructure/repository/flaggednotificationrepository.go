package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/mappers"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
)

// FlaggedNotificationRepository stores gateway callbacks held for manual review.
type FlaggedNotificationRepository struct {
	db *gorm.DB
}

func NewFlaggedNotificationRepository(db *gorm.DB) *FlaggedNotificationRepository {
	return &FlaggedNotificationRepository{db: db}
}

func (r *FlaggedNotificationRepository) Create(ctx context.Context, n *reservation.FlaggedNotification) error {
	model, err := mappers.FlaggedNotificationToModel(n)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create flagged notification: %w", err)
	}

	return nil
}

func (r *FlaggedNotificationRepository) ListRecent(ctx context.Context, limit int) ([]*reservation.FlaggedNotification, error) {
	var flaggedModels []models.FlaggedNotificationModel

	if err := r.db.WithContext(ctx).
		Order("received_at DESC").
		Limit(limit).
		Find(&flaggedModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list flagged notifications: %w", err)
	}

	flagged := make([]*reservation.FlaggedNotification, 0, len(flaggedModels))
	for i := range flaggedModels {
		n, err := mappers.FlaggedNotificationToDomain(&flaggedModels[i])
		if err != nil {
			return nil, err
		}
		flagged = append(flagged, n)
	}

	return flagged, nil
}
