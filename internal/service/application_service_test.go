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

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, orderID, freelancerID uuid.UUID, message string, proposedBudget *float64) (*models.Application, error) {
	args := m.Called(ctx, orderID, freelancerID, message, proposedBudget)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, uuid.UUID, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, uuid.Nil, args.Error(2)
	}
	return args.Get(0).(*models.Application), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *mockApplicationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Application, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.Application), args.Error(1)
}

func (m *mockApplicationRepo) MarkViewed(ctx context.Context, applicationID, orderID, clientID uuid.UUID) error {
	args := m.Called(ctx, applicationID, orderID, clientID)
	return args.Error(0)
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, applicationID, orderID uuid.UUID, status string) error {
	args := m.Called(ctx, applicationID, orderID, status)
	return args.Error(0)
}

type mockApplicationOrderRepo struct {
	mock.Mock
}

func (m *mockApplicationOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func TestApplicationService_Create_Success(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()
	orderID := uuid.New()
	freelancerID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusPublished,
	}, nil)
	expected := &models.Application{ID: uuid.New(), OrderID: orderID, FreelancerID: freelancerID}
	applications.On("Create", ctx, orderID, freelancerID, "готов взяться", (*float64)(nil)).Return(expected, nil)

	application, err := svc.Create(ctx, orderID, freelancerID, models.RoleFreelancer, "готов взяться", nil)
	assert.NoError(t, err)
	assert.Equal(t, expected, application)
}

func TestApplicationService_Create_ClientRoleForbidden(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), uuid.New(), models.RoleClient, "сообщение", nil)
	assert.True(t, apperror.IsForbidden(err))
	orders.AssertNotCalled(t, "GetByID")
	applications.AssertNotCalled(t, "Create")
}

func TestApplicationService_Create_OwnOrder(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()
	orderID := uuid.New()
	clientID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID: orderID, ClientID: clientID, Status: models.OrderStatusPublished,
	}, nil)

	_, err := svc.Create(ctx, orderID, clientID, models.RoleFreelancer, "сообщение", nil)
	assert.True(t, apperror.IsForbidden(err))
	applications.AssertNotCalled(t, "Create")
}

func TestApplicationService_Create_UnpublishedOrder(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()
	orderID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusInProgress,
	}, nil)

	_, err := svc.Create(ctx, orderID, uuid.New(), models.RoleFreelancer, "сообщение", nil)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestApplicationService_Create_InsufficientFunds(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()
	orderID := uuid.New()
	freelancerID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusPublished,
	}, nil)
	applications.On("Create", ctx, orderID, freelancerID, "сообщение", (*float64)(nil)).
		Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.Create(ctx, orderID, freelancerID, models.RoleFreelancer, "сообщение", nil)
	assert.True(t, apperror.IsInsufficientFunds(err))
}

func TestApplicationService_Create_Duplicate(t *testing.T) {
	applications := new(mockApplicationRepo)
	orders := new(mockApplicationOrderRepo)
	svc := NewApplicationService(applications, orders)
	ctx := context.Background()
	orderID := uuid.New()
	freelancerID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusPublished,
	}, nil)
	applications.On("Create", ctx, orderID, freelancerID, "сообщение", (*float64)(nil)).
		Return(nil, repository.ErrApplicationExists)

	_, err := svc.Create(ctx, orderID, freelancerID, models.RoleFreelancer, "сообщение", nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestApplicationService_MarkViewed_OnlyClient(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()
	clientID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: uuid.New(), Status: models.ApplicationStatusPending,
	}, clientID, nil)

	err := svc.MarkViewed(ctx, applicationID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
	applications.AssertNotCalled(t, "MarkViewed")
}

func TestApplicationService_MarkViewed_IdempotentWhenAlreadyViewed(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()
	clientID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: uuid.New(), ViewedByClient: true,
	}, clientID, nil)

	err := svc.MarkViewed(ctx, applicationID, clientID)
	assert.NoError(t, err)
	applications.AssertNotCalled(t, "MarkViewed")
}

func TestApplicationService_Respond_AlreadyProcessed(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()
	clientID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: uuid.New(), Status: models.ApplicationStatusAccepted,
	}, clientID, nil)

	err := svc.Respond(ctx, applicationID, clientID, models.RoleClient, models.ApplicationStatusRejected)
	assert.True(t, apperror.IsInvalidState(err))
	applications.AssertNotCalled(t, "UpdateStatus")
}

func TestApplicationService_Respond_NotOwnerForbidden(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: uuid.New(), Status: models.ApplicationStatusPending,
	}, uuid.New(), nil)

	err := svc.Respond(ctx, applicationID, uuid.New(), models.RoleClient, models.ApplicationStatusAccepted)
	assert.True(t, apperror.IsForbidden(err))
	applications.AssertNotCalled(t, "UpdateStatus")
}

func TestApplicationService_Respond_AdminOverride(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()
	orderID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: orderID, Status: models.ApplicationStatusPending,
	}, uuid.New(), nil)
	applications.On("UpdateStatus", ctx, applicationID, orderID, models.ApplicationStatusRejected).Return(nil)

	err := svc.Respond(ctx, applicationID, uuid.New(), models.RoleAdmin, models.ApplicationStatusRejected)
	assert.NoError(t, err)
	applications.AssertExpectations(t)
}

func TestApplicationService_Respond_Accept(t *testing.T) {
	applications := new(mockApplicationRepo)
	svc := NewApplicationService(applications, new(mockApplicationOrderRepo))
	ctx := context.Background()
	applicationID := uuid.New()
	orderID := uuid.New()
	clientID := uuid.New()

	applications.On("GetByID", ctx, applicationID).Return(&models.Application{
		ID: applicationID, OrderID: orderID, Status: models.ApplicationStatusPending,
	}, clientID, nil)
	applications.On("UpdateStatus", ctx, applicationID, orderID, models.ApplicationStatusAccepted).Return(nil)

	err := svc.Respond(ctx, applicationID, clientID, models.RoleClient, models.ApplicationStatusAccepted)
	assert.NoError(t, err)
	applications.AssertExpectations(t)
}
