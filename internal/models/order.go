package models

import (
	"time"

	"github.com/google/uuid"
)

// Order описывает заказ. Фрилансер назначается после принятия отклика.
type Order struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID *uuid.UUID `db:"freelancer_id" json:"freelancer_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Budget       *float64   `db:"budget" json:"budget,omitempty"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	ApplicationsCount *int `db:"applications_count" json:"applications_count,omitempty"`
}
