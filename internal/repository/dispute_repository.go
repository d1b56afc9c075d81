package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vkaryagin/freelance-market/internal/models"
)

var (
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrOpenDisputeExists    = errors.New("open dispute already exists for this order")
	ErrDisputeAlreadyClosed = errors.New("dispute already resolved")
)

// DisputeRepository хранит споры, их сообщения и историю.
// Каждое изменяющее действие пишет запись истории в той же транзакции.
type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

const disputeColumns = `d.id, d.order_id, d.opened_by_user_id, d.against_user_id, d.reason, d.description,
	d.status, d.resolution, d.resolved_by_admin_id, d.resolved_at, d.created_at`

const disputeJoinedColumns = disputeColumns + `,
	o.title AS order_title,
	u1.full_name AS opened_by_name,
	u2.full_name AS against_name`

const disputeJoins = `
	FROM disputes d
	JOIN orders o ON d.order_id = o.id
	JOIN users u1 ON d.opened_by_user_id = u1.id
	JOIN users u2 ON d.against_user_id = u2.id`

// Create создаёт спор и запись истории "opened". Существующий спор
// в статусе open/in_review по тому же заказу даёт ErrOpenDisputeExists:
// сначала явной проверкой, а при гонке частичным уникальным индексом.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM disputes WHERE order_id = $1 AND status IN ('open', 'in_review')
		)
	`, d.OrderID)
	if err != nil {
		return fmt.Errorf("dispute repository: check existing %w", err)
	}
	if exists {
		return ErrOpenDisputeExists
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO disputes (order_id, opened_by_user_id, against_user_id, reason, description, status)
		VALUES ($1, $2, $3, $4, $5, 'open')
		RETURNING id, status, created_at
	`, d.OrderID, d.OpenedByUserID, d.AgainstUserID, d.Reason, d.Description).
		Scan(&d.ID, &d.Status, &d.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrOpenDisputeExists
		}
		return fmt.Errorf("dispute repository: create %w", err)
	}

	details := fmt.Sprintf("Спор открыт по причине: %s", d.Reason)
	if err := r.insertHistoryTx(ctx, tx, d.ID, models.DisputeActionOpened, nil, nil, d.OpenedByUserID, &details); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID возвращает спор с именами сторон и названием заказа.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.GetContext(ctx, &dispute, `SELECT `+disputeJoinedColumns+disputeJoins+` WHERE d.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: get by id %w", err)
	}
	return &dispute, nil
}

// GetThread возвращает спор вместе с сообщениями и историей.
func (r *DisputeRepository) GetThread(ctx context.Context, id uuid.UUID) (*models.DisputeThread, error) {
	dispute, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	messages := []models.DisputeMessage{}
	err = r.db.SelectContext(ctx, &messages, `
		SELECT dm.id, dm.dispute_id, dm.user_id, dm.message, dm.attachments, dm.created_at,
			u.full_name AS user_name
		FROM dispute_messages dm
		JOIN users u ON dm.user_id = u.id
		WHERE dm.dispute_id = $1
		ORDER BY dm.created_at ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list messages %w", err)
	}

	history := []models.DisputeHistoryEntry{}
	err = r.db.SelectContext(ctx, &history, `
		SELECT id, dispute_id, action, old_value, new_value, performed_by_user_id, details, created_at
		FROM dispute_history
		WHERE dispute_id = $1
		ORDER BY created_at DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: list history %w", err)
	}

	return &models.DisputeThread{Dispute: *dispute, Messages: messages, History: history}, nil
}

// AddMessage добавляет сообщение в тред и запись истории. Строка спора
// блокируется FOR UPDATE и статус проверяется внутри транзакции:
// в спор, закрытый параллельным Resolve, сообщение не попадёт.
func (r *DisputeRepository) AddMessage(ctx context.Context, disputeID, userID uuid.UUID, message string, attachments json.RawMessage) (*models.DisputeMessage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status string
	err = tx.GetContext(ctx, &status, `SELECT status FROM disputes WHERE id = $1 FOR UPDATE`, disputeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: lock dispute %w", err)
	}
	if status == models.DisputeStatusResolved {
		return nil, ErrDisputeAlreadyClosed
	}

	var msg models.DisputeMessage
	err = tx.GetContext(ctx, &msg, `
		INSERT INTO dispute_messages (dispute_id, user_id, message, attachments)
		VALUES ($1, $2, $3, $4)
		RETURNING id, dispute_id, user_id, message, attachments, created_at
	`, disputeID, userID, message, attachments)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: add message %w", err)
	}

	if err := r.insertHistoryTx(ctx, tx, disputeID, models.DisputeActionMessageAdded, nil, nil, userID, nil); err != nil {
		return nil, err
	}

	return &msg, tx.Commit()
}

// Resolve закрывает спор. Переход одноразовый: строка блокируется
// FOR UPDATE, уже решённый спор даёт ErrDisputeAlreadyClosed.
func (r *DisputeRepository) Resolve(ctx context.Context, disputeID, adminID uuid.UUID, resolution string, winnerID *uuid.UUID) (*models.Dispute, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var oldStatus string
	err = tx.GetContext(ctx, &oldStatus, `SELECT status FROM disputes WHERE id = $1 FOR UPDATE`, disputeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("dispute repository: lock dispute %w", err)
	}
	if oldStatus == models.DisputeStatusResolved {
		return nil, ErrDisputeAlreadyClosed
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE disputes
		SET status = 'resolved', resolution = $2, resolved_by_admin_id = $3, resolved_at = NOW()
		WHERE id = $1
	`, disputeID, resolution, adminID); err != nil {
		return nil, fmt.Errorf("dispute repository: resolve %w", err)
	}

	newStatus := models.DisputeStatusResolved
	details := resolution
	if winnerID != nil {
		details = fmt.Sprintf("%s (победитель: %s)", resolution, winnerID)
	}
	if err := r.insertHistoryTx(ctx, tx, disputeID, models.DisputeActionResolved, &oldStatus, &newStatus, adminID, &details); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, disputeID)
}

// ListByUser возвращает споры, в которых пользователь является стороной.
func (r *DisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]models.Dispute, error) {
	query := `SELECT ` + disputeJoinedColumns + disputeJoins + `
		WHERE (d.opened_by_user_id = $1 OR d.against_user_id = $1)`
	args := []interface{}{userID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND d.status = $%d", len(args))
	}
	query += ` ORDER BY d.created_at DESC`

	disputes := []models.Dispute{}
	if err := r.db.SelectContext(ctx, &disputes, query, args...); err != nil {
		return nil, fmt.Errorf("dispute repository: list by user %w", err)
	}
	return disputes, nil
}

// ListAll возвращает все споры (для админки).
func (r *DisputeRepository) ListAll(ctx context.Context, status string) ([]models.Dispute, error) {
	query := `SELECT ` + disputeJoinedColumns + disputeJoins
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += ` WHERE d.status = $1`
	}
	query += ` ORDER BY d.created_at DESC`

	disputes := []models.Dispute{}
	if err := r.db.SelectContext(ctx, &disputes, query, args...); err != nil {
		return nil, fmt.Errorf("dispute repository: list all %w", err)
	}
	return disputes, nil
}

// insertHistoryTx добавляет неизменяемую запись аудита.
func (r *DisputeRepository) insertHistoryTx(ctx context.Context, tx *sqlx.Tx, disputeID uuid.UUID, action string, oldValue, newValue *string, performedBy uuid.UUID, details *string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dispute_history (dispute_id, action, old_value, new_value, performed_by_user_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, disputeID, action, oldValue, newValue, performedBy, details); err != nil {
		return fmt.Errorf("dispute repository: insert history %w", err)
	}
	return nil
}
