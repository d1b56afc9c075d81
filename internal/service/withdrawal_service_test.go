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

type mockWithdrawalRepo struct {
	mock.Mock
}

func (m *mockWithdrawalRepo) Create(ctx context.Context, userID uuid.UUID, amount float64, method, details string) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, amount, method, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) Process(ctx context.Context, requestID, adminID uuid.UUID, status string, adminComment *string) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID, adminID, status, adminComment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) ListAll(ctx context.Context, status string) ([]models.WithdrawalRequestAdminView, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]models.WithdrawalRequestAdminView), args.Error(1)
}

func newWithdrawalService(repo *mockWithdrawalRepo, notifRepo *mockNotificationRepo) *WithdrawalService {
	return NewWithdrawalService(repo, NewNotificationService(notifRepo))
}

func TestWithdrawalService_Create_BelowMinimum(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))

	_, err := svc.Create(context.Background(), uuid.New(), 99.99, "card", "4111")
	assert.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestWithdrawalService_Create_Success(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.WithdrawalRequest{ID: uuid.New(), UserID: userID, Amount: 500, Status: models.WithdrawalStatusPending}
	repo.On("Create", ctx, userID, float64(500), "card", "4111").Return(expected, nil)

	request, err := svc.Create(ctx, userID, 500, "card", "4111")
	assert.NoError(t, err)
	assert.Equal(t, expected, request)
	repo.AssertExpectations(t)
}

func TestWithdrawalService_Create_InsufficientFunds(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, userID, float64(500), "card", "4111").Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.Create(ctx, userID, 500, "card", "4111")
	assert.True(t, apperror.IsInsufficientFunds(err))
}

func TestWithdrawalService_Process_InvalidStatus(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))

	_, err := svc.Process(context.Background(), uuid.New(), uuid.New(), "pending", nil)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Process")
}

func TestWithdrawalService_Process_Completed_NotifiesUser(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	notifRepo := new(mockNotificationRepo)
	svc := newWithdrawalService(repo, notifRepo)
	ctx := context.Background()
	requestID := uuid.New()
	adminID := uuid.New()
	userID := uuid.New()

	processed := &models.WithdrawalRequest{ID: requestID, UserID: userID, Amount: 500, Status: models.WithdrawalStatusCompleted}
	repo.On("Process", ctx, requestID, adminID, models.WithdrawalStatusCompleted, (*string)(nil)).Return(processed, nil)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.Title == "Вывод средств выполнен"
	})).Return(nil)

	request, err := svc.Process(ctx, requestID, adminID, models.WithdrawalStatusCompleted, nil)
	assert.NoError(t, err)
	assert.Equal(t, processed, request)
	repo.AssertExpectations(t)
	notifRepo.AssertExpectations(t)
}

func TestWithdrawalService_Process_AlreadyProcessed(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))
	ctx := context.Background()
	requestID := uuid.New()
	adminID := uuid.New()

	repo.On("Process", ctx, requestID, adminID, models.WithdrawalStatusRejected, (*string)(nil)).
		Return(nil, repository.ErrWithdrawalAlreadyProcessed)

	_, err := svc.Process(ctx, requestID, adminID, models.WithdrawalStatusRejected, nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestWithdrawalService_ListAll_InvalidStatus(t *testing.T) {
	repo := new(mockWithdrawalRepo)
	svc := newWithdrawalService(repo, new(mockNotificationRepo))

	_, err := svc.ListAll(context.Background(), "bogus")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "ListAll")
}
