package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBalance), args.Error(1)
}

func (m *mockLedgerRepo) ApplyTransaction(ctx context.Context, p repository.ApplyTransactionParams) (*models.Transaction, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockLedgerRepo) ListTransactions(ctx context.Context, userID uuid.UUID, txType, status string, limit, offset int) (*models.TransactionPage, error) {
	args := m.Called(ctx, userID, txType, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionPage), args.Error(1)
}

func (m *mockLedgerRepo) FinanceStats(ctx context.Context) (*models.FinanceStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinanceStats), args.Error(1)
}

func (m *mockLedgerRepo) TransactionBreakdown(ctx context.Context) ([]models.TransactionBreakdown, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TransactionBreakdown), args.Error(1)
}

func TestFinanceService_GetBalance(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.UserBalance{UserID: userID, Balance: 1000, PendingAmount: 200}
	repo.On("GetBalance", ctx, userID).Return(expected, nil)

	balance, err := svc.GetBalance(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, expected, balance)
	repo.AssertExpectations(t)
}

func TestFinanceService_CreateTransaction_Success(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()
	userID := uuid.New()

	params := repository.ApplyTransactionParams{
		UserID: userID,
		Type:   models.TransactionTypeBonus,
		Amount: 500,
	}
	expected := &models.Transaction{ID: uuid.New(), UserID: userID, Type: models.TransactionTypeBonus, Amount: 500}
	repo.On("ApplyTransaction", ctx, params).Return(expected, nil)

	tx, err := svc.CreateTransaction(ctx, params)
	assert.NoError(t, err)
	assert.Equal(t, expected, tx)
	repo.AssertExpectations(t)
}

func TestFinanceService_CreateTransaction_InvalidType(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)

	_, err := svc.CreateTransaction(context.Background(), repository.ApplyTransactionParams{
		UserID: uuid.New(),
		Type:   "withdrawal",
		Amount: 100,
	})
	assert.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "ApplyTransaction")
}

func TestFinanceService_CreateTransaction_NegativeAmount(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)

	_, err := svc.CreateTransaction(context.Background(), repository.ApplyTransactionParams{
		UserID: uuid.New(),
		Type:   models.TransactionTypeEarned,
		Amount: -50,
	})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "ApplyTransaction")
}

func TestFinanceService_CreateTransaction_InsufficientFunds(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()

	params := repository.ApplyTransactionParams{
		UserID: uuid.New(),
		Type:   models.TransactionTypeSpent,
		Amount: 9999,
	}
	repo.On("ApplyTransaction", ctx, params).Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.CreateTransaction(ctx, params)
	assert.True(t, apperror.IsInsufficientFunds(err))
}

func TestFinanceService_ListTransactions_DefaultLimit(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.TransactionPage{Transactions: []models.Transaction{}, Total: 0}
	repo.On("ListTransactions", ctx, userID, "", "", 20, 0).Return(expected, nil)

	page, err := svc.ListTransactions(ctx, userID, "", "", 0, -5)
	assert.NoError(t, err)
	assert.Equal(t, expected, page)
	repo.AssertExpectations(t)
}

func TestFinanceService_ListTransactions_InvalidStatus(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)

	_, err := svc.ListTransactions(context.Background(), uuid.New(), "", "cancelled", 20, 0)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "ListTransactions")
}

func TestFinanceService_ListTransactions_StatusFilterAllowed(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.TransactionPage{Transactions: []models.Transaction{}, Total: 0}
	repo.On("ListTransactions", ctx, userID, "", models.TransactionStatusCompleted, 20, 0).Return(expected, nil)

	_, err := svc.ListTransactions(ctx, userID, "", models.TransactionStatusCompleted, 20, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFinanceService_ListTransactions_WithdrawalTypeAllowed(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewFinanceService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.TransactionPage{Transactions: []models.Transaction{}, Total: 0}
	repo.On("ListTransactions", ctx, userID, models.TransactionTypeWithdrawal, "", 20, 0).Return(expected, nil)

	_, err := svc.ListTransactions(ctx, userID, models.TransactionTypeWithdrawal, "", 20, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
