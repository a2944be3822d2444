package http

import (
	"gorm.io/gorm"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	"github.com/tourbook/tourbook/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	reservationRepo reservation.ReservationRepository
	flaggedRepo     reservation.FlaggedNotificationRepository
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		reservationRepo: repository.NewReservationRepository(db),
		flaggedRepo:     repository.NewFlaggedNotificationRepository(db),
	}
}
