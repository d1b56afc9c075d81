package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/models"
)

var (
	ErrWithdrawalNotFound         = errors.New("withdrawal request not found")
	ErrWithdrawalAlreadyProcessed = errors.New("withdrawal request already processed")
)

// WithdrawalRepository управляет жизненным циклом запросов на вывод.
// Резервирование и возврат средств идут через примитивы леджера
// внутри одной транзакции, чтобы pending_amount всегда совпадал
// с суммой pending запросов.
type WithdrawalRepository struct {
	db     *sqlx.DB
	ledger *LedgerRepository
}

func NewWithdrawalRepository(db *sqlx.DB, ledger *LedgerRepository) *WithdrawalRepository {
	return &WithdrawalRepository{db: db, ledger: ledger}
}

const withdrawalColumns = `id, user_id, amount, payment_method, payment_details, status, admin_comment, processed_by, processed_at, created_at`

// Create резервирует сумму и создаёт запрос в статусе pending.
func (r *WithdrawalRepository) Create(ctx context.Context, userID uuid.UUID, amount float64, method, details string) (*models.WithdrawalRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := r.ledger.LockBalanceTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	// Замораживаем средства: списываем с баланса в pending_amount.
	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances
		SET balance = balance - $2, pending_amount = pending_amount + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: reserve funds %w", err)
	}

	var request models.WithdrawalRequest
	err = tx.GetContext(ctx, &request, `
		INSERT INTO withdrawal_requests (user_id, amount, payment_method, payment_details)
		VALUES ($1, $2, $3, $4)
		RETURNING `+withdrawalColumns+`
	`, userID, amount, method, details)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: create %w", err)
	}

	return &request, tx.Commit()
}

// Process переводит запрос из pending в терминальный статус.
// Повторная обработка невозможна: строка запроса блокируется FOR UPDATE
// и проверяется исходный статус.
func (r *WithdrawalRepository) Process(ctx context.Context, requestID, adminID uuid.UUID, status string, adminComment *string) (*models.WithdrawalRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var request models.WithdrawalRequest
	err = tx.GetContext(ctx, &request, `
		SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE
	`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("withdrawal repository: lock request %w", err)
	}
	if request.Status != models.WithdrawalStatusPending {
		return nil, ErrWithdrawalAlreadyProcessed
	}

	if _, err := r.ledger.LockBalanceTx(ctx, tx, request.UserID); err != nil {
		return nil, err
	}

	switch status {
	case models.WithdrawalStatusCompleted:
		// Средства покидают платформу: снимаем заморозку, увеличиваем total_withdrawn.
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances
			SET pending_amount = pending_amount - $2, total_withdrawn = total_withdrawn + $2, updated_at = NOW()
			WHERE user_id = $1
		`, request.UserID, request.Amount)
		if err != nil {
			return nil, fmt.Errorf("withdrawal repository: finalize funds %w", err)
		}

		description := fmt.Sprintf("Вывод средств (%s)", request.PaymentMethod)
		if _, err := r.ledger.InsertTransactionTx(ctx, tx, ApplyTransactionParams{
			UserID:      request.UserID,
			Type:        models.TransactionTypeWithdrawal,
			Amount:      request.Amount,
			Description: description,
		}); err != nil {
			return nil, err
		}
	case models.WithdrawalStatusRejected:
		// Возвращаем заморозку обратно на баланс.
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances
			SET balance = balance + $2, pending_amount = pending_amount - $2, updated_at = NOW()
			WHERE user_id = $1
		`, request.UserID, request.Amount)
		if err != nil {
			return nil, fmt.Errorf("withdrawal repository: restore funds %w", err)
		}
	default:
		return nil, fmt.Errorf("withdrawal repository: unexpected target status %q", status)
	}

	err = tx.GetContext(ctx, &request, `
		UPDATE withdrawal_requests
		SET status = $2, admin_comment = $3, processed_by = $4, processed_at = NOW()
		WHERE id = $1
		RETURNING `+withdrawalColumns+`
	`, requestID, status, adminComment, adminID)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: update status %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if status == models.WithdrawalStatusCompleted {
		metrics.TransactionsTotal.WithLabelValues(models.TransactionTypeWithdrawal).Inc()
	}
	return &request, nil
}

// GetByID возвращает запрос по идентификатору.
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := r.db.GetContext(ctx, &request, `SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWithdrawalNotFound
	}
	return &request, err
}

// ListByUser возвращает запросы пользователя.
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	requests := []models.WithdrawalRequest{}
	err := r.db.SelectContext(ctx, &requests, `
		SELECT `+withdrawalColumns+` FROM withdrawal_requests
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return requests, err
}

// ListAll возвращает все запросы с данными пользователей (для админки).
func (r *WithdrawalRepository) ListAll(ctx context.Context, status string) ([]models.WithdrawalRequestAdminView, error) {
	query := `
		SELECT wr.id, wr.user_id, wr.amount, wr.payment_method, wr.payment_details,
			wr.status, wr.admin_comment, wr.processed_by, wr.processed_at, wr.created_at,
			u.full_name AS user_name, u.email AS user_email, ub.balance AS user_balance
		FROM withdrawal_requests wr
		JOIN users u ON wr.user_id = u.id
		LEFT JOIN user_balances ub ON u.id = ub.user_id
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE wr.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY wr.created_at DESC`

	requests := []models.WithdrawalRequestAdminView{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list all %w", err)
	}
	return requests, nil
}
