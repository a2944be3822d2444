package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourbook/tourbook/internal/domain/reservation"
	apperrors "github.com/tourbook/tourbook/internal/shared/errors"
)

func TestListFlaggedNotificationsUseCase_Execute(t *testing.T) {
	flagged := reservation.NewFlaggedNotification(reservation.FlagReasonAmountMismatch, testOrderRef, "amount 1.00 does not match reservation amount 125.50")
	flagged.SourceIP = "203.0.113.7"
	flagged.MerchantParameters = "eyJEc19PcmRlciI6IjE1MjAwMDAwUjQ1QSJ9"

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default limit", 0, defaultFlaggedListLimit},
		{"explicit limit", 10, 10},
		{"capped limit", 10000, maxFlaggedListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			repo := &mockFlaggedNotificationRepository{
				ListRecentFunc: func(ctx context.Context, limit int) ([]*reservation.FlaggedNotification, error) {
					gotLimit = limit
					return []*reservation.FlaggedNotification{flagged}, nil
				},
			}

			uc := NewListFlaggedNotificationsUseCase(repo, newNopLogger())
			views, err := uc.Execute(context.Background(), ListFlaggedNotificationsQuery{Limit: tt.limit})
			require.NoError(t, err)

			assert.Equal(t, tt.wantLimit, gotLimit)
			require.Len(t, views, 1)
			assert.Equal(t, flagged.ID, views[0].ID)
			assert.Equal(t, "amount_mismatch", views[0].Reason)
			assert.Equal(t, testOrderRef, views[0].OrderReference)
			assert.Equal(t, "203.0.113.7", views[0].SourceIP)
		})
	}
}

func TestListFlaggedNotificationsUseCase_Execute_StorageError(t *testing.T) {
	repo := &mockFlaggedNotificationRepository{
		ListRecentFunc: func(ctx context.Context, limit int) ([]*reservation.FlaggedNotification, error) {
			return nil, assert.AnError
		},
	}

	uc := NewListFlaggedNotificationsUseCase(repo, newNopLogger())
	_, err := uc.Execute(context.Background(), ListFlaggedNotificationsQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
	assert.ErrorIs(t, err, assert.AnError)
}
