package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationChannel is the Postgres NOTIFY channel new notifications are
// published on.
const NotificationChannel = "notifications"

const NotificationListLimit = 50

var ErrNotificationNotFound = errors.New("notification not found")

// Notice describes a notification to deliver.
type Notice struct {
	RecipientID uuid.UUID
	ActorID     *uuid.UUID
	Type        models.NotificationType
	EntityID    *uuid.UUID
	Metadata    map[string]interface{}
}

// NotificationView is a notification with its actor resolved.
type NotificationView struct {
	models.Notification
	Actor *models.Author `json:"actor,omitempty"`
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores the notification and publishes it for live delivery.
// Acting on your own content produces nothing.
func (s *NotificationService) Notify(n Notice) error {
	if n.ActorID != nil && *n.ActorID == n.RecipientID {
		return nil
	}

	meta := datatypes.JSON("{}")
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return err
		}
		meta = raw
	}

	record := models.Notification{
		ID:          uuid.New(),
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Type:        n.Type,
		EntityID:    n.EntityID,
		Metadata:    meta,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}

	view := NotificationView{Notification: record}
	if n.ActorID != nil {
		var actor models.User
		if err := s.db.Unscoped().Select("id", "username", "avatar_type", "avatar_value").First(&actor, "id = ?", *n.ActorID).Error; err == nil {
			a := actor.Author()
			view.Actor = &a
		}
	}

	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	if err := s.db.Exec("SELECT pg_notify(?, ?)", NotificationChannel, string(payload)).Error; err != nil {
		slog.Warn("notification publish failed", "error", err, "user_id", n.RecipientID.String())
	}
	return nil
}

// TryNotify runs Notify and only logs failures. Notifications never fail
// the action that caused them.
func (s *NotificationService) TryNotify(n Notice) {
	if err := s.Notify(n); err != nil {
		slog.Error("notification failed", "error", err, "action", string(n.Type), "user_id", n.RecipientID.String())
	}
}

// List returns the latest notifications and the total unread count.
func (s *NotificationService) List(userID uuid.UUID) ([]NotificationView, int64, error) {
	var rows []models.Notification
	err := s.db.
		Preload("Actor", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(NotificationListLimit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	var unread int64
	s.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", userID).Count(&unread)

	views := make([]NotificationView, len(rows))
	for i, n := range rows {
		views[i] = NotificationView{Notification: n}
		if n.Actor != nil {
			a := n.Actor.Author()
			views[i].Actor = &a
		}
	}
	return views, unread, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
