package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/service"
)

func TestNotificationService_CreateNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresAndPushes", func(t *testing.T) {
		repo, push := new(MockNotificationRepo), new(MockPushSender)
		svc := service.NewNotificationService(repo, push)

		isNote := mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Module == domain.NotificationModuleMembership && n.EntityID == "req-1" &&
				n.Type == domain.NotificationTypeRequestApproved && n.Metadata["matricule"] == "MUT-2026-00001" &&
				!n.CreatedAt.IsZero()
		})
		repo.On("Create", ctx, isNote).Return(nil).Once()
		push.On("Push", ctx, isNote).Return(nil).Once()

		err := svc.CreateNotification(ctx, domain.NotificationModuleMembership, "req-1", domain.NotificationTypeRequestApproved,
			"Membership approved", "Awa is now a member", map[string]string{"matricule": "MUT-2026-00001"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
		push.AssertExpectations(t)
	})

	t.Run("PushFailureIgnored", func(t *testing.T) {
		repo, push := new(MockNotificationRepo), new(MockPushSender)
		svc := service.NewNotificationService(repo, push)
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()
		push.On("Push", ctx, mock.Anything).Return(errors.New("fcm unavailable")).Once()

		assert.NoError(t, svc.CreateNotification(ctx, domain.NotificationModuleMembership, "req-1", "T", "t", "m", nil))
	})

	t.Run("StoreFailureNotPushed", func(t *testing.T) {
		repo, push := new(MockNotificationRepo), new(MockPushSender)
		svc := service.NewNotificationService(repo, push)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		assert.Error(t, svc.CreateNotification(ctx, domain.NotificationModuleMembership, "req-1", "T", "t", "m", nil))
		push.AssertNumberOfCalls(t, "Push", 0)
	})

	t.Run("WithoutPush", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		svc := service.NewNotificationService(repo, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		assert.NoError(t, svc.CreateNotification(ctx, domain.NotificationModuleMembership, "req-1", "T", "t", "m", nil))
	})
}

func TestNotificationService_GetNotifications(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepo)
	svc := service.NewNotificationService(repo, nil)

	notes := []domain.Notification{{ID: "n-1"}}
	repo.On("List", ctx, domain.NotificationModuleMembership, int32(10), int32(20)).Return(notes, int32(21), nil).Once()
	repo.On("List", ctx, domain.NotificationModuleMembership, int32(20), int32(0)).Return([]domain.Notification{}, int32(0), nil).Once()

	got, total, err := svc.GetNotifications(ctx, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(21), total)
	assert.Len(t, got, 1)

	_, _, err = svc.GetNotifications(ctx, 0, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepo)
	svc := service.NewNotificationService(repo, nil)

	repo.On("MarkAsRead", ctx, "n-1").Return(nil).Once()
	repo.On("MarkAsRead", ctx, "n-9").Return(service.ErrNotFound).Once()

	assert.NoError(t, svc.MarkAsRead(ctx, "n-1"))
	assert.ErrorIs(t, svc.MarkAsRead(ctx, "n-9"), service.ErrNotFound)
	repo.AssertExpectations(t)
}
