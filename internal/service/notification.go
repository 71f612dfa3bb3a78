package service

import (
	"context"
	"time"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	push     PushSender
}

// NewNotificationService stores admin notifications and, when push is not
// nil, forwards them to admin devices.
func NewNotificationService(noteRepo repository.NotificationRepository, push PushSender) NotificationService {
	return &notificationService{noteRepo: noteRepo, push: push}
}

func (s *notificationService) CreateNotification(ctx context.Context, module, entityID, notificationType, title, message string, metadata map[string]string) error {
	note := &domain.Notification{
		Module:    module,
		EntityID:  entityID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return err
	}

	if s.push != nil {
		if err := s.push.Push(ctx, note); err != nil {
			logger.SideEffectFailed("push", entityID, err, "notificationID", note.ID)
		}
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, domain.NotificationModuleMembership, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID string) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID)
}

// notify sends a membership notification and only logs a failure.
func notify(ctx context.Context, n NotificationService, requestID, notificationType, title, message string, metadata map[string]string) {
	if n == nil {
		return
	}
	if err := n.CreateNotification(ctx, domain.NotificationModuleMembership, requestID, notificationType, title, message, metadata); err != nil {
		logger.SideEffectFailed("notification", requestID, err, "type", notificationType)
	}
}
