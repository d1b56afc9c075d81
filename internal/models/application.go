package models

import (
	"time"

	"github.com/google/uuid"
)

// Application представляет отклик фрилансера на заказ.
// Стоимость отклика списывается при создании и возвращается ровно один раз,
// если заказчик проигнорировал отклик.
type Application struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrderID          uuid.UUID  `db:"order_id" json:"order_id"`
	FreelancerID     uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Message          string     `db:"message" json:"message"`
	ProposedBudget   *float64   `db:"proposed_budget" json:"proposed_budget,omitempty"`
	Status           string     `db:"status" json:"status"`
	ViewedByClient   bool       `db:"viewed_by_client" json:"viewed_by_client"`
	ViewedAt         *time.Time `db:"viewed_at" json:"viewed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// ApplicationRefund фиксирует возврат за игнорированный отклик.
// Уникальность application_id служит защитой от повторного возврата.
type ApplicationRefund struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ApplicationID uuid.UUID `db:"application_id" json:"application_id"`
	FreelancerID  uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	OrderID       uuid.UUID `db:"order_id" json:"order_id"`
	RefundAmount  float64   `db:"refund_amount" json:"refund_amount"`
	Reason        string    `db:"reason" json:"reason"`
	TransactionID uuid.UUID `db:"transaction_id" json:"transaction_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// IgnoredApplication строка выборки для возврата за игнорированные отклики.
type IgnoredApplication struct {
	ID           uuid.UUID `db:"id"`
	FreelancerID uuid.UUID `db:"freelancer_id"`
	OrderID      uuid.UUID `db:"order_id"`
	ClientID     uuid.UUID `db:"client_id"`
	OrderTitle   string    `db:"order_title"`
}

// SweepResult итог прохода по игнорированным откликам.
type SweepResult struct {
	Processed int `json:"processed"`
	Refunded  int `json:"refunded"`
}
