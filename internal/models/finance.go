package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы транзакций. Начисляющие типы увеличивают баланс,
// списывающие уменьшают; withdrawal создаётся только процессом вывода средств.
const (
	TransactionTypeEarned     = "earned"
	TransactionTypeBonus      = "bonus"
	TransactionTypeSpent      = "spent"
	TransactionTypePenalty    = "penalty"
	TransactionTypeRefund     = "refund"
	TransactionTypeWithdrawal = "withdrawal"
)

// Статусы транзакций.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
)

// ValidTransactionTypes список типов, которые принимает леджер.
var ValidTransactionTypes = map[string]bool{
	TransactionTypeEarned:  true,
	TransactionTypeBonus:   true,
	TransactionTypeSpent:   true,
	TransactionTypePenalty: true,
	TransactionTypeRefund:  true,
}

// IsCreditType сообщает, увеличивает ли тип транзакции баланс.
func IsCreditType(t string) bool {
	return t == TransactionTypeEarned || t == TransactionTypeBonus || t == TransactionTypeRefund
}

// IsDebitType сообщает, списывает ли тип транзакции средства с баланса.
func IsDebitType(t string) bool {
	return t == TransactionTypeSpent || t == TransactionTypePenalty
}

// UserBalance представляет счёт пользователя.
// Инвариант: balance неотрицателен, pending_amount равен сумме
// его запросов на вывод в статусе pending.
type UserBalance struct {
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Balance        float64   `db:"balance" json:"balance"`
	PendingAmount  float64   `db:"pending_amount" json:"pending_amount"`
	TotalEarned    float64   `db:"total_earned" json:"total_earned"`
	TotalSpent     float64   `db:"total_spent" json:"total_spent"`
	TotalWithdrawn float64   `db:"total_withdrawn" json:"total_withdrawn"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction представляет запись журнала финансовых событий.
// Запись неизменяема после создания.
type Transaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID       *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	RelatedUserID *uuid.UUID `db:"related_user_id" json:"related_user_id,omitempty"`
	Type          string     `db:"type" json:"type"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	Description   *string    `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// TransactionPage страница транзакций с общим количеством.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

// FinanceStats агрегированная статистика платформы для админа.
type FinanceStats struct {
	TotalUsersWithBalance  int     `db:"total_users_with_balance" json:"total_users_with_balance"`
	TotalPlatformBalance   float64 `db:"total_platform_balance" json:"total_platform_balance"`
	TotalPlatformEarned    float64 `db:"total_platform_earned" json:"total_platform_earned"`
	TotalPlatformSpent     float64 `db:"total_platform_spent" json:"total_platform_spent"`
	TotalPlatformWithdrawn float64 `db:"total_platform_withdrawn" json:"total_platform_withdrawn"`
	TotalPending           float64 `db:"total_pending" json:"total_pending"`
}

// TransactionBreakdown строка разбивки транзакций по типу и статусу.
type TransactionBreakdown struct {
	Type        string  `db:"type" json:"type"`
	Status      string  `db:"status" json:"status"`
	Count       int     `db:"count" json:"count"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
}
