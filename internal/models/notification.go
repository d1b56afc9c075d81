package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений, которые создаёт ядро.
const (
	NotificationDisputeOpened   = "dispute_opened"
	NotificationDisputeMessage  = "dispute_message"
	NotificationDisputeResolved = "dispute_resolved"
	NotificationAdminMessage    = "admin_message"
)

// Notification запись для пользователя; доставка (push, websocket)
// остаётся за внешним сервисом, здесь только персистентность.
type Notification struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Type        string     `db:"type" json:"type"`
	Title       string     `db:"title" json:"title"`
	Message     string     `db:"message" json:"message"`
	RelatedID   *uuid.UUID `db:"related_id" json:"related_id,omitempty"`
	RelatedType *string    `db:"related_type" json:"related_type,omitempty"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
