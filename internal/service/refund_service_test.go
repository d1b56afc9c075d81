package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type mockRefundApplicationRepo struct {
	mock.Mock
}

func (m *mockRefundApplicationRepo) FindIgnored(ctx context.Context, olderThan time.Time) ([]models.IgnoredApplication, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.IgnoredApplication), args.Error(1)
}

func (m *mockRefundApplicationRepo) Refund(ctx context.Context, app models.IgnoredApplication, amount float64, reason string) (*models.Transaction, error) {
	args := m.Called(ctx, app, amount, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func ignoredApplication() models.IgnoredApplication {
	return models.IgnoredApplication{
		ID:           uuid.New(),
		FreelancerID: uuid.New(),
		OrderID:      uuid.New(),
		ClientID:     uuid.New(),
		OrderTitle:   "Лендинг",
	}
}

func TestRefundService_ProcessIgnored_Empty(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	svc := NewRefundService(repo, NewNotificationService(new(mockNotificationRepo)), 7*24*time.Hour)

	repo.On("FindIgnored", mock.Anything, mock.Anything).Return([]models.IgnoredApplication{}, nil)

	result, err := svc.ProcessIgnored(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Refunded)
}

func TestRefundService_ProcessIgnored_RefundsAndNotifies(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	notifRepo := new(mockNotificationRepo)
	svc := NewRefundService(repo, NewNotificationService(notifRepo), 7*24*time.Hour)
	app := ignoredApplication()

	repo.On("FindIgnored", mock.Anything, mock.Anything).Return([]models.IgnoredApplication{app}, nil)
	transaction := &models.Transaction{ID: uuid.New(), Amount: models.ApplicationFee}
	repo.On("Refund", mock.Anything, app, models.ApplicationFee, mock.AnythingOfType("string")).Return(transaction, nil)
	// Уведомления фрилансеру и заказчику.
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == app.FreelancerID
	})).Return(nil).Once()
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == app.ClientID
	})).Return(nil).Once()

	result, err := svc.ProcessIgnored(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Refunded)
	notifRepo.AssertExpectations(t)
}

func TestRefundService_ProcessIgnored_ContinuesAfterFailure(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	notifRepo := new(mockNotificationRepo)
	svc := NewRefundService(repo, NewNotificationService(notifRepo), 7*24*time.Hour)

	broken := ignoredApplication()
	healthy := ignoredApplication()
	repo.On("FindIgnored", mock.Anything, mock.Anything).Return([]models.IgnoredApplication{broken, healthy}, nil)
	repo.On("Refund", mock.Anything, broken, models.ApplicationFee, mock.AnythingOfType("string")).
		Return(nil, errors.New("db down"))
	repo.On("Refund", mock.Anything, healthy, models.ApplicationFee, mock.AnythingOfType("string")).
		Return(&models.Transaction{ID: uuid.New(), Amount: models.ApplicationFee}, nil)
	notifRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.ProcessIgnored(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Refunded)
}

func TestRefundService_ProcessIgnored_SkipsAlreadyRefunded(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	svc := NewRefundService(repo, NewNotificationService(new(mockNotificationRepo)), 7*24*time.Hour)
	app := ignoredApplication()

	repo.On("FindIgnored", mock.Anything, mock.Anything).Return([]models.IgnoredApplication{app}, nil)
	repo.On("Refund", mock.Anything, app, models.ApplicationFee, mock.AnythingOfType("string")).
		Return(nil, repository.ErrAlreadyRefunded)

	result, err := svc.ProcessIgnored(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Refunded)
}

func TestRefundService_ProcessIgnored_UsesGracePeriodCutoff(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	svc := NewRefundService(repo, NewNotificationService(new(mockNotificationRepo)), 7*24*time.Hour)

	repo.On("FindIgnored", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().Add(-7 * 24 * time.Hour)
		return cutoff.Sub(expected) < time.Minute && expected.Sub(cutoff) < time.Minute
	})).Return([]models.IgnoredApplication{}, nil)

	_, err := svc.ProcessIgnored(context.Background())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRefundService_ProcessIgnored_StopsOnCancelledContext(t *testing.T) {
	repo := new(mockRefundApplicationRepo)
	svc := NewRefundService(repo, NewNotificationService(new(mockNotificationRepo)), 7*24*time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	apps := []models.IgnoredApplication{ignoredApplication(), ignoredApplication()}
	repo.On("FindIgnored", mock.Anything, mock.Anything).Return(apps, nil).Run(func(args mock.Arguments) {
		cancel()
	})

	result, err := svc.ProcessIgnored(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Refunded)
	repo.AssertNotCalled(t, "Refund")
}
