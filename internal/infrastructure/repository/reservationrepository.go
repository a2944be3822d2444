package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/mappers"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := mappers.ReservationToModel(res)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: reservation %s already exists", reservation.ErrInvalidReservation, res.ID())
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var model models.ReservationModel

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", reservation.ErrReservationNotFound, id)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return mappers.ReservationToDomain(&model)
}

func (r *ReservationRepository) GetByOrderReference(ctx context.Context, orderReference string) (*reservation.Reservation, error) {
	var model models.ReservationModel

	if err := r.db.WithContext(ctx).
		Where("order_reference = ?", orderReference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order reference %s", reservation.ErrReservationNotFound, orderReference)
		}
		return nil, fmt.Errorf("failed to get reservation by order_reference: %w", err)
	}

	return mappers.ReservationToDomain(&model)
}

// AssignOrderReference writes the reference only while the column is still
// NULL. A reference used by another reservation also reports a lost race.
func (r *ReservationRepository) AssignOrderReference(ctx context.Context, res *reservation.Reservation) error {
	if !res.HasOrderReference() {
		return fmt.Errorf("%w: no order reference to assign", reservation.ErrInvalidReservation)
	}
	model := mappers.ReservationToModel(res)

	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND order_reference IS NULL", model.ID).
		Updates(map[string]interface{}{
			"order_reference": model.OrderReference,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return fmt.Errorf("%w: order reference %s in use", reservation.ErrConcurrentUpdate, res.OrderReference())
		}
		return fmt.Errorf("failed to assign order reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %s already has an order reference", reservation.ErrConcurrentUpdate, res.ID())
	}

	return nil
}

// UpdatePaymentState is a compare-and-set on (payment_status, version). Every
// write bumps the version, so RowsAffected is never zero for a matching row.
func (r *ReservationRepository) UpdatePaymentState(
	ctx context.Context,
	res *reservation.Reservation,
	expectedStatus vo.PaymentStatus,
	expectedVersion int,
) error {
	model := mappers.ReservationToModel(res)

	result := r.db.WithContext(ctx).
		Model(&models.ReservationModel{}).
		Where("id = ? AND payment_status = ? AND version = ?", model.ID, expectedStatus.String(), expectedVersion).
		Updates(map[string]interface{}{
			"payment_status":     model.PaymentStatus,
			"authorization_code": model.AuthorizationCode,
			"authorized_at":      model.AuthorizedAt,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update reservation payment state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: reservation %s is no longer %s at version %d",
			reservation.ErrConcurrentUpdate, res.ID(), expectedStatus, expectedVersion)
	}

	return nil
}

func (r *ReservationRepository) ListPreauthorizedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*reservation.Reservation, error) {
	var reservationModels []models.ReservationModel

	if err := r.db.WithContext(ctx).
		Where("payment_status = ? AND authorized_at < ?", vo.PaymentStatusPreauthorized.String(), cutoff).
		Order("authorized_at ASC").
		Limit(limit).
		Find(&reservationModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list preauthorized reservations: %w", err)
	}

	reservations := make([]*reservation.Reservation, 0, len(reservationModels))
	for i := range reservationModels {
		res, err := mappers.ReservationToDomain(&reservationModels[i])
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}
