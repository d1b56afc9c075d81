package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Статусы споров. Спор закрывает только администратор, resolved терминален.
const (
	DisputeStatusOpen     = "open"
	DisputeStatusInReview = "in_review"
	DisputeStatusResolved = "resolved"
)

// Действия в истории спора.
const (
	DisputeActionOpened       = "opened"
	DisputeActionMessageAdded = "message_added"
	DisputeActionResolved     = "resolved"
)

// Dispute представляет спор между участниками заказа.
type Dispute struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	OrderID           uuid.UUID  `db:"order_id" json:"order_id"`
	OpenedByUserID    uuid.UUID  `db:"opened_by_user_id" json:"opened_by_user_id"`
	AgainstUserID     uuid.UUID  `db:"against_user_id" json:"against_user_id"`
	Reason            string     `db:"reason" json:"reason"`
	Description       string     `db:"description" json:"description"`
	Status            string     `db:"status" json:"status"`
	Resolution        *string    `db:"resolution" json:"resolution,omitempty"`
	ResolvedByAdminID *uuid.UUID `db:"resolved_by_admin_id" json:"resolved_by_admin_id,omitempty"`
	ResolvedAt        *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`

	OrderTitle   *string `db:"order_title" json:"order_title,omitempty"`
	OpenedByName *string `db:"opened_by_name" json:"opened_by_name,omitempty"`
	AgainstName  *string `db:"against_name" json:"against_name,omitempty"`
}

// DisputeMessage сообщение в треде спора, append-only.
type DisputeMessage struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	DisputeID   uuid.UUID       `db:"dispute_id" json:"dispute_id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Message     string          `db:"message" json:"message"`
	Attachments json.RawMessage `db:"attachments" json:"attachments,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`

	UserName *string `db:"user_name" json:"user_name,omitempty"`
}

// DisputeHistoryEntry неизменяемая запись аудита действий по спору.
type DisputeHistoryEntry struct {
	ID                uuid.UUID `db:"id" json:"id"`
	DisputeID         uuid.UUID `db:"dispute_id" json:"dispute_id"`
	Action            string    `db:"action" json:"action"`
	OldValue          *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue          *string   `db:"new_value" json:"new_value,omitempty"`
	PerformedByUserID uuid.UUID `db:"performed_by_user_id" json:"performed_by_user_id"`
	Details           *string   `db:"details" json:"details,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// DisputeThread спор вместе с сообщениями и историей.
type DisputeThread struct {
	Dispute  Dispute               `json:"dispute"`
	Messages []DisputeMessage      `json:"messages"`
	History  []DisputeHistoryEntry `json:"history"`
}
