package mappers

import (
	"fmt"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	vo "github.com/tourbook/tourbook/internal/domain/reservation/valueobjects"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
)

func ReservationToModel(r *reservation.Reservation) *models.ReservationModel {
	model := &models.ReservationModel{
		ID:            r.ID(),
		Amount:        r.Amount().Amount(),
		Currency:      r.Amount().Currency(),
		Description:   r.Description(),
		PaymentStatus: r.PaymentStatus().String(),
		AuthorizedAt:  r.AuthorizedAt(),
		Version:       r.Version(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}

	if r.HasOrderReference() {
		ref := r.OrderReference()
		model.OrderReference = &ref
	}
	if code := r.AuthorizationCode(); code != "" {
		model.AuthorizationCode = &code
	}

	return model
}

func ReservationToDomain(model *models.ReservationModel) (*reservation.Reservation, error) {
	status := vo.PaymentStatus(model.PaymentStatus)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status %q for reservation %s", model.PaymentStatus, model.ID)
	}

	return reservation.ReconstructReservation(reservation.ReconstructParams{
		ID:                model.ID,
		Amount:            vo.NewMoney(model.Amount, model.Currency),
		Description:       model.Description,
		PaymentStatus:     status,
		OrderReference:    model.OrderReference,
		AuthorizationCode: model.AuthorizationCode,
		AuthorizedAt:      model.AuthorizedAt,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}
