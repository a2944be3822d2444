package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationModel holds the payment columns of a reservation row.
type ReservationModel struct {
	ID                string          `gorm:"primaryKey;size:64"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency          string          `gorm:"size:3;not null;default:'EUR'"`
	Description       string          `gorm:"size:255"`
	PaymentStatus     string          `gorm:"size:20;not null;index:idx_reservations_status_authorized"`
	OrderReference    *string         `gorm:"size:12;uniqueIndex"`
	AuthorizationCode *string         `gorm:"size:16"`
	AuthorizedAt      *time.Time      `gorm:"index:idx_reservations_status_authorized"`
	Version           int             `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ReservationModel) TableName() string {
	return "reservations"
}
