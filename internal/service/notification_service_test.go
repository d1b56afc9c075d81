package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkaryagin/freelance-market/internal/models"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, onlyUnread, limit, offset)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestNotificationService_Notify(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()
	relatedID := uuid.New()
	relatedType := "dispute"

	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID &&
			n.Type == models.NotificationDisputeOpened &&
			n.Title == "Открыт спор" &&
			n.RelatedID != nil && *n.RelatedID == relatedID
	})).Return(nil)

	svc.Notify(ctx, userID, models.NotificationDisputeOpened, "Открыт спор", "текст", &relatedID, &relatedType)
	repo.AssertExpectations(t)
}

func TestNotificationService_List_DefaultLimit(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByUser", ctx, userID, false, 20, 0).Return([]models.Notification{}, nil)

	notifications, err := svc.List(ctx, userID, false, 0, 0)
	assert.NoError(t, err)
	assert.Empty(t, notifications)
	repo.AssertExpectations(t)
}
