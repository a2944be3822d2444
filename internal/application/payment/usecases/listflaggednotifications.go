package usecases

import (
	"context"
	"time"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
	"github.com/tourbook/tourbook/internal/shared/logger"
)

const (
	defaultFlaggedListLimit = 50
	maxFlaggedListLimit     = 200
)

type ListFlaggedNotificationsQuery struct {
	Limit int
}

// FlaggedNotificationView is the review-queue entry shown to operators. The
// raw envelope stays in storage.
type FlaggedNotificationView struct {
	ID             string    `json:"id"`
	Reason         string    `json:"reason"`
	OrderReference string    `json:"order_reference,omitempty"`
	SourceIP       string    `json:"source_ip,omitempty"`
	Detail         string    `json:"detail"`
	ReceivedAt     time.Time `json:"received_at"`
}

type ListFlaggedNotificationsUseCase struct {
	flaggedRepo reservation.FlaggedNotificationRepository
	logger      logger.Interface
}

func NewListFlaggedNotificationsUseCase(
	flaggedRepo reservation.FlaggedNotificationRepository,
	logger logger.Interface,
) *ListFlaggedNotificationsUseCase {
	return &ListFlaggedNotificationsUseCase{
		flaggedRepo: flaggedRepo,
		logger:      logger,
	}
}

func (uc *ListFlaggedNotificationsUseCase) Execute(ctx context.Context, query ListFlaggedNotificationsQuery) ([]FlaggedNotificationView, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultFlaggedListLimit
	}
	if limit > maxFlaggedListLimit {
		limit = maxFlaggedListLimit
	}

	flagged, err := uc.flaggedRepo.ListRecent(ctx, limit)
	if err != nil {
		uc.logger.Errorw("failed to list flagged notifications", "error", err)
		return nil, apperrors.NewInternalError("failed to list flagged notifications").WithCause(err)
	}

	views := make([]FlaggedNotificationView, 0, len(flagged))
	for _, n := range flagged {
		views = append(views, FlaggedNotificationView{
			ID:             n.ID,
			Reason:         string(n.Reason),
			OrderReference: n.OrderReference,
			SourceIP:       n.SourceIP,
			Detail:         n.Detail,
			ReceivedAt:     n.ReceivedAt,
		})
	}
	return views, nil
}
