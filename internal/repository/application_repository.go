package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists for this order")
	ErrAlreadyRefunded     = errors.New("application already refunded")
)

const pgUniqueViolation = "23505"

// ApplicationRepository управляет откликами на заказы и возвратами за них.
type ApplicationRepository struct {
	db     *sqlx.DB
	ledger *LedgerRepository
}

func NewApplicationRepository(db *sqlx.DB, ledger *LedgerRepository) *ApplicationRepository {
	return &ApplicationRepository{db: db, ledger: ledger}
}

const applicationColumns = `id, order_id, freelancer_id, message, proposed_budget, status, viewed_by_client, viewed_at, created_at`

// Create создаёт отклик и в той же транзакции списывает стоимость отклика
// через леджер. Недостаток средств отменяет создание целиком.
func (r *ApplicationRepository) Create(ctx context.Context, orderID, freelancerID uuid.UUID, message string, proposedBudget *float64) (*models.Application, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var application models.Application
	err = tx.GetContext(ctx, &application, `
		INSERT INTO order_applications (order_id, freelancer_id, message, proposed_budget)
		VALUES ($1, $2, $3, $4)
		RETURNING `+applicationColumns+`
	`, orderID, freelancerID, message, proposedBudget)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrApplicationExists
		}
		return nil, fmt.Errorf("application repository: create %w", err)
	}

	if _, err := r.ledger.ApplyTransactionTx(ctx, tx, ApplyTransactionParams{
		UserID:      freelancerID,
		Type:        models.TransactionTypeSpent,
		Amount:      models.ApplicationFee,
		Description: "Оплата отклика на заказ",
		OrderID:     &orderID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(models.TransactionTypeSpent).Inc()
	return &application, nil
}

// GetByID возвращает отклик вместе с client_id родительского заказа.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, uuid.UUID, error) {
	var row struct {
		models.Application
		ClientID uuid.UUID `db:"client_id"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT oa.id, oa.order_id, oa.freelancer_id, oa.message, oa.proposed_budget,
			oa.status, oa.viewed_by_client, oa.viewed_at, oa.created_at, o.client_id
		FROM order_applications oa
		JOIN orders o ON oa.order_id = o.id
		WHERE oa.id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uuid.Nil, ErrApplicationNotFound
		}
		return nil, uuid.Nil, fmt.Errorf("application repository: get by id %w", err)
	}
	return &row.Application, row.ClientID, nil
}

// ListByOrder возвращает отклики на заказ.
func (r *ApplicationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Application, error) {
	applications := []models.Application{}
	err := r.db.SelectContext(ctx, &applications, `
		SELECT `+applicationColumns+` FROM order_applications
		WHERE order_id = $1 ORDER BY created_at ASC
	`, orderID)
	return applications, err
}

// MarkViewed отмечает отклик просмотренным заказчиком
// и добавляет строку в журнал просмотров.
func (r *ApplicationRepository) MarkViewed(ctx context.Context, applicationID, orderID, clientID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE order_applications SET viewed_by_client = TRUE, viewed_at = NOW() WHERE id = $1
	`, applicationID); err != nil {
		return fmt.Errorf("application repository: mark viewed %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO application_views (application_id, order_id, client_id)
		VALUES ($1, $2, $3)
	`, applicationID, orderID, clientID); err != nil {
		return fmt.Errorf("application repository: record view %w", err)
	}

	return tx.Commit()
}

// UpdateStatus переводит отклик в новый статус; при принятии остальные
// pending отклики заказа отклоняются, а заказ уходит в работу.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID, orderID uuid.UUID, status string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var freelancerID uuid.UUID
	err = tx.GetContext(ctx, &freelancerID, `
		UPDATE order_applications SET status = $2 WHERE id = $1 RETURNING freelancer_id
	`, applicationID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("application repository: update status %w", err)
	}

	if status == models.ApplicationStatusAccepted {
		if _, err := tx.ExecContext(ctx, `
			UPDATE order_applications SET status = $3
			WHERE order_id = $1 AND id != $2 AND status = $4
		`, orderID, applicationID, models.ApplicationStatusRejected, models.ApplicationStatusPending); err != nil {
			return fmt.Errorf("application repository: reject others %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = $2, freelancer_id = $3, updated_at = NOW() WHERE id = $1
		`, orderID, models.OrderStatusInProgress, freelancerID); err != nil {
			return fmt.Errorf("application repository: move order to work %w", err)
		}
	}

	return tx.Commit()
}

// FindIgnored выбирает отклики, которые заказчик игнорировал дольше
// льготного периода: pending, не просмотрены, заказ всё ещё опубликован
// и возврата по ним ещё не было.
func (r *ApplicationRepository) FindIgnored(ctx context.Context, olderThan time.Time) ([]models.IgnoredApplication, error) {
	applications := []models.IgnoredApplication{}
	err := r.db.SelectContext(ctx, &applications, `
		SELECT oa.id, oa.freelancer_id, oa.order_id, o.client_id, o.title AS order_title
		FROM order_applications oa
		JOIN orders o ON oa.order_id = o.id
		WHERE oa.status = 'pending'
			AND oa.viewed_by_client = FALSE
			AND oa.created_at < $1
			AND o.status = 'published'
			AND NOT EXISTS (
				SELECT 1 FROM application_refunds ar WHERE ar.application_id = oa.id
			)
	`, olderThan)
	if err != nil {
		return nil, fmt.Errorf("application repository: find ignored %w", err)
	}
	return applications, nil
}

// Refund атомарно возвращает стоимость отклика фрилансеру: начисление на
// баланс, транзакция возврата, строка-страж в application_refunds и перевод
// отклика в refunded. Уникальность application_id гарантирует однократность.
func (r *ApplicationRepository) Refund(ctx context.Context, app models.IgnoredApplication, amount float64, reason string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	description := fmt.Sprintf("Возврат за игнорированный отклик на заказ %q", app.OrderTitle)
	transaction, err := r.ledger.ApplyTransactionTx(ctx, tx, ApplyTransactionParams{
		UserID:      app.FreelancerID,
		Type:        models.TransactionTypeRefund,
		Amount:      amount,
		Description: description,
		OrderID:     &app.OrderID,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO application_refunds (application_id, freelancer_id, order_id, refund_amount, reason, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, app.ID, app.FreelancerID, app.OrderID, amount, reason, transaction.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return nil, ErrAlreadyRefunded
		}
		return nil, fmt.Errorf("application repository: insert refund guard %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE order_applications SET status = $2 WHERE id = $1
	`, app.ID, models.ApplicationStatusRefunded); err != nil {
		return nil, fmt.Errorf("application repository: mark refunded %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(models.TransactionTypeRefund).Inc()
	return transaction, nil
}
