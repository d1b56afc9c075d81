package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/models"
)

var (
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrUnsupportedTransactionType = errors.New("unsupported transaction type")
	ErrTransactionNotFound        = errors.New("transaction not found")
)

// LedgerRepository единственная точка изменения балансов. Любая мутация
// user_balances проходит через ApplyTransactionTx либо через примитивы
// LockBalanceTx/InsertTransactionTx внутри одной транзакции БД.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyTransactionParams параметры одного события леджера.
type ApplyTransactionParams struct {
	UserID        uuid.UUID
	Type          string
	Amount        float64
	Description   string
	OrderID       *uuid.UUID
	RelatedUserID *uuid.UUID
}

// GetBalance возвращает баланс пользователя, создаёт строку если её нет.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	query := `
		INSERT INTO user_balances (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, balance, pending_amount, total_earned, total_spent, total_withdrawn, updated_at
	`
	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		return nil, fmt.Errorf("ledger repository: get balance %w", err)
	}
	return &balance, nil
}

// ApplyTransaction применяет событие леджера в собственной транзакции:
// вставка записи журнала и мутация баланса атомарны.
func (r *LedgerRepository) ApplyTransaction(ctx context.Context, p ApplyTransactionParams) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	transaction, err := r.ApplyTransactionTx(ctx, tx, p)
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	metrics.TransactionsTotal.WithLabelValues(p.Type).Inc()
	return transaction, nil
}

// ApplyTransactionTx применяет событие внутри уже открытой транзакции.
// Строка баланса блокируется FOR UPDATE, списывающие типы проверяют
// достаточность средств до мутации.
func (r *LedgerRepository) ApplyTransactionTx(ctx context.Context, tx *sqlx.Tx, p ApplyTransactionParams) (*models.Transaction, error) {
	balance, err := r.LockBalanceTx(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Type == models.TransactionTypeEarned || p.Type == models.TransactionTypeBonus:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances
			SET balance = balance + $2, total_earned = total_earned + $2, updated_at = NOW()
			WHERE user_id = $1
		`, p.UserID, p.Amount)
	case p.Type == models.TransactionTypeRefund:
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances
			SET balance = balance + $2, updated_at = NOW()
			WHERE user_id = $1
		`, p.UserID, p.Amount)
	case models.IsDebitType(p.Type):
		if balance.Balance < p.Amount {
			return nil, ErrInsufficientFunds
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE user_balances
			SET balance = balance - $2, total_spent = total_spent + $2, updated_at = NOW()
			WHERE user_id = $1
		`, p.UserID, p.Amount)
	default:
		// withdrawal создаётся только процессом вывода средств.
		return nil, ErrUnsupportedTransactionType
	}
	if err != nil {
		return nil, fmt.Errorf("ledger repository: update balance %w", err)
	}

	return r.InsertTransactionTx(ctx, tx, p)
}

// LockBalanceTx создаёт при необходимости и блокирует строку баланса.
func (r *LedgerRepository) LockBalanceTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.UserBalance, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, fmt.Errorf("ledger repository: ensure balance %w", err)
	}

	var balance models.UserBalance
	err := tx.GetContext(ctx, &balance, `
		SELECT user_id, balance, pending_amount, total_earned, total_spent, total_withdrawn, updated_at
		FROM user_balances WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: lock balance %w", err)
	}
	return &balance, nil
}

// InsertTransactionTx вставляет завершённую запись журнала.
func (r *LedgerRepository) InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, p ApplyTransactionParams) (*models.Transaction, error) {
	var transaction models.Transaction
	err := tx.GetContext(ctx, &transaction, `
		INSERT INTO transactions (user_id, order_id, related_user_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, $3, $4, $5, 'completed', $6, NOW())
		RETURNING id, user_id, order_id, related_user_id, type, amount, status, description, created_at, completed_at
	`, p.UserID, p.OrderID, p.RelatedUserID, p.Type, p.Amount, p.Description)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: insert transaction %w", err)
	}
	return &transaction, nil
}

// ListTransactions возвращает страницу транзакций пользователя
// с опциональными фильтрами по типу и статусу.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID uuid.UUID, txType, status string, limit, offset int) (*models.TransactionPage, error) {
	query := `SELECT id, user_id, order_id, related_user_id, type, amount, status, description, created_at, completed_at
		FROM transactions WHERE user_id = $1`
	countQuery := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`
	args := []interface{}{userID}

	if txType != "" {
		args = append(args, txType)
		cond := fmt.Sprintf(" AND type = $%d", len(args))
		query += cond
		countQuery += cond
	}
	if status != "" {
		args = append(args, status)
		cond := fmt.Sprintf(" AND status = $%d", len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("ledger repository: count transactions %w", err)
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	transactions := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, fmt.Errorf("ledger repository: list transactions %w", err)
	}

	return &models.TransactionPage{Transactions: transactions, Total: total}, nil
}

// FinanceStats возвращает агрегаты по балансам платформы.
func (r *LedgerRepository) FinanceStats(ctx context.Context) (*models.FinanceStats, error) {
	var stats models.FinanceStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(DISTINCT user_id) AS total_users_with_balance,
			COALESCE(SUM(balance), 0) AS total_platform_balance,
			COALESCE(SUM(total_earned), 0) AS total_platform_earned,
			COALESCE(SUM(total_spent), 0) AS total_platform_spent,
			COALESCE(SUM(total_withdrawn), 0) AS total_platform_withdrawn,
			COALESCE(SUM(pending_amount), 0) AS total_pending
		FROM user_balances
	`)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: finance stats %w", err)
	}
	return &stats, nil
}

// TransactionBreakdown возвращает разбивку транзакций по типу и статусу.
func (r *LedgerRepository) TransactionBreakdown(ctx context.Context) ([]models.TransactionBreakdown, error) {
	breakdown := []models.TransactionBreakdown{}
	err := r.db.SelectContext(ctx, &breakdown, `
		SELECT type, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
		FROM transactions
		GROUP BY type, status
		ORDER BY type, status
	`)
	if err != nil {
		return nil, fmt.Errorf("ledger repository: transaction breakdown %w", err)
	}
	return breakdown, nil
}
