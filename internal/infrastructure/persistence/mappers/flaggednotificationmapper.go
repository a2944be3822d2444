package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	"github.com/tourbook/tourbook/internal/infrastructure/persistence/models"
)

func FlaggedNotificationToModel(n *reservation.FlaggedNotification) (*models.FlaggedNotificationModel, error) {
	envelope, err := json.Marshal(models.FlaggedEnvelope{
		SignatureVersion:   n.SignatureVersion,
		MerchantParameters: n.MerchantParameters,
		Signature:          n.Signature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode flagged envelope: %w", err)
	}

	return &models.FlaggedNotificationModel{
		ID:             n.ID,
		Reason:         string(n.Reason),
		OrderReference: n.OrderReference,
		Envelope:       datatypes.JSON(envelope),
		SourceIP:       n.SourceIP,
		Detail:         n.Detail,
		ReceivedAt:     n.ReceivedAt,
	}, nil
}

func FlaggedNotificationToDomain(model *models.FlaggedNotificationModel) (*reservation.FlaggedNotification, error) {
	var envelope models.FlaggedEnvelope
	if len(model.Envelope) > 0 {
		if err := json.Unmarshal(model.Envelope, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode flagged envelope %s: %w", model.ID, err)
		}
	}

	return &reservation.FlaggedNotification{
		ID:                 model.ID,
		Reason:             reservation.FlagReason(model.Reason),
		OrderReference:     model.OrderReference,
		SignatureVersion:   envelope.SignatureVersion,
		MerchantParameters: envelope.MerchantParameters,
		Signature:          envelope.Signature,
		SourceIP:           model.SourceIP,
		Detail:             model.Detail,
		ReceivedAt:         model.ReceivedAt,
	}, nil
}
