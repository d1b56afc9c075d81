package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type LedgerRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
	ApplyTransaction(ctx context.Context, p repository.ApplyTransactionParams) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, txType, status string, limit, offset int) (*models.TransactionPage, error)
	FinanceStats(ctx context.Context) (*models.FinanceStats, error)
	TransactionBreakdown(ctx context.Context) ([]models.TransactionBreakdown, error)
}

// FinanceService балансы и журнал транзакций.
type FinanceService struct {
	ledger LedgerRepository
}

func NewFinanceService(ledger LedgerRepository) *FinanceService {
	return &FinanceService{ledger: ledger}
}

// GetBalance возвращает баланс пользователя.
func (s *FinanceService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// CreateTransaction применяет транзакцию к балансу пользователя.
// Запись журнала и мутация баланса атомарны.
func (s *FinanceService) CreateTransaction(ctx context.Context, p repository.ApplyTransactionParams) (*models.Transaction, error) {
	if !models.ValidTransactionTypes[p.Type] {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип транзакции")
	}
	if p.Amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}

	transaction, err := s.ledger.ApplyTransaction(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, apperror.ErrInsufficientFunds
		}
		return nil, err
	}
	return transaction, nil
}

// ListTransactions возвращает страницу транзакций пользователя.
func (s *FinanceService) ListTransactions(ctx context.Context, userID uuid.UUID, txType, status string, limit, offset int) (*models.TransactionPage, error) {
	if txType != "" && !models.ValidTransactionTypes[txType] && txType != models.TransactionTypeWithdrawal {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип транзакции")
	}
	if status != "" && status != models.TransactionStatusPending && status != models.TransactionStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус транзакции")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListTransactions(ctx, userID, txType, status, limit, offset)
}

// Stats возвращает сводку по финансам платформы.
func (s *FinanceService) Stats(ctx context.Context) (*models.FinanceStats, []models.TransactionBreakdown, error) {
	stats, err := s.ledger.FinanceStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	breakdown, err := s.ledger.TransactionBreakdown(ctx)
	if err != nil {
		return nil, nil, err
	}
	return stats, breakdown, nil
}
