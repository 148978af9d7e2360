package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another user")
)

// NotificationService owns the notification inbox and the dispatch side of the
// task lifecycle engine.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify persists a notification for a real user. Dispatch is best-effort and
// at-most-once: a failure is logged and never propagated, so the task mutation
// that triggered it stands.
func (s *NotificationService) Notify(userID uint64, notificationType models.NotificationType, title, message string, taskID *uint64) {
	if userID == 0 {
		s.logger.Warn("notification suppressed", "reason", "no real target user", "type", notificationType)
		return
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		TaskID:  taskID,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		s.logger.Error("notification dispatch failed",
			"user_id", userID,
			"type", notificationType,
			"error", err,
		)
	}
}

// ListForUser returns the actor's notifications, newest first. Company
// principals have no backing user row and therefore no inbox.
func (s *NotificationService) ListForUser(actor auth.Principal) ([]models.Notification, error) {
	userID, ok := actor.RealUserID()
	if !ok {
		return []models.Notification{}, nil
	}

	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the actor's own notifications as read.
func (s *NotificationService) MarkRead(actor auth.Principal, id uint64) error {
	if err := s.requireOwner(actor, id); err != nil {
		return err
	}
	if err := s.notificationRepo.MarkRead(id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// Delete removes one of the actor's own notifications.
func (s *NotificationService) Delete(actor auth.Principal, id uint64) error {
	if err := s.requireOwner(actor, id); err != nil {
		return err
	}
	if err := s.notificationRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *NotificationService) requireOwner(actor auth.Principal, id uint64) error {
	notification, err := s.notificationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to find notification: %w", err)
	}

	userID, ok := actor.RealUserID()
	if !ok || notification.UserID != userID {
		return ErrNotNotificationOwner
	}
	return nil
}
