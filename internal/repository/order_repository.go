package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaryagin/freelance-market/internal/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository хранит заказы.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, client_id, freelancer_id, title, description, budget, status, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, clientID uuid.UUID, title, description string, budget *float64) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		INSERT INTO orders (client_id, title, description, budget, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns+`
	`, clientID, title, description, budget, models.OrderStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("order repository: create %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &order, nil
}

// ListPublished возвращает ленту опубликованных заказов со счётчиком откликов.
func (r *OrderRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT o.id, o.client_id, o.freelancer_id, o.title, o.description, o.budget, o.status,
			o.created_at, o.updated_at,
			COUNT(oa.id) AS applications_count
		FROM orders o
		LEFT JOIN order_applications oa ON oa.order_id = o.id
		WHERE o.status = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`, models.OrderStatusPublished, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list published %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders
		WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by client %w", err)
	}
	return orders, nil
}

// UpdateStatus переводит заказ в новый статус.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("order repository: update status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}
