package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы запросов на вывод. Переходы только pending -> completed
// и pending -> rejected, оба терминальные.
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

// WithdrawalRequest представляет запрос на вывод средств.
// На время рассмотрения сумма заморожена в pending_amount баланса.
type WithdrawalRequest struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	Amount         float64    `db:"amount" json:"amount"`
	PaymentMethod  string     `db:"payment_method" json:"payment_method"`
	PaymentDetails string     `db:"payment_details" json:"payment_details"`
	Status         string     `db:"status" json:"status"`
	AdminComment   *string    `db:"admin_comment" json:"admin_comment,omitempty"`
	ProcessedBy    *uuid.UUID `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt    *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// WithdrawalRequestAdminView запрос на вывод с данными пользователя для админки.
type WithdrawalRequestAdminView struct {
	WithdrawalRequest
	UserName    string   `db:"user_name" json:"user_name"`
	UserEmail   string   `db:"user_email" json:"user_email"`
	UserBalance *float64 `db:"user_balance" json:"user_balance,omitempty"`
}
