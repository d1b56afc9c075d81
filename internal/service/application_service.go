package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type ApplicationRepository interface {
	Create(ctx context.Context, orderID, freelancerID uuid.UUID, message string, proposedBudget *float64) (*models.Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, uuid.UUID, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Application, error)
	MarkViewed(ctx context.Context, applicationID, orderID, clientID uuid.UUID) error
	UpdateStatus(ctx context.Context, applicationID, orderID uuid.UUID, status string) error
}

type ApplicationOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ApplicationService отклики фрилансеров на заказы.
// Создание отклика платное, возврат при игнорировании делает RefundService.
type ApplicationService struct {
	applications ApplicationRepository
	orders       ApplicationOrderRepository
}

func NewApplicationService(applications ApplicationRepository, orders ApplicationOrderRepository) *ApplicationService {
	return &ApplicationService{applications: applications, orders: orders}
}

// Create создаёт отклик. Откликаться могут фрилансеры и администраторы,
// стоимость отклика списывается с баланса в той же транзакции,
// на свой заказ откликнуться нельзя.
func (s *ApplicationService) Create(ctx context.Context, orderID, freelancerID uuid.UUID, role, message string, proposedBudget *float64) (*models.Application, error) {
	if role != models.RoleFreelancer && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "откликаться на заказы могут только фрилансеры")
	}
	if message == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сообщение отклика не может быть пустым")
	}
	if proposedBudget != nil && *proposedBudget <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "предложенный бюджет должен быть положительным")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusPublished {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "откликнуться можно только на опубликованный заказ")
	}
	if order.ClientID == freelancerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя откликнуться на собственный заказ")
	}

	application, err := s.applications.Create(ctx, orderID, freelancerID, message, proposedBudget)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationExists):
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже откликнулись на этот заказ")
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, apperror.ErrInsufficientFunds
		}
		return nil, err
	}
	return application, nil
}

// MarkViewed отмечает отклик просмотренным. Доступно только заказчику,
// просмотр исключает отклик из будущих возвратов.
func (s *ApplicationService) MarkViewed(ctx context.Context, applicationID, userID uuid.UUID) error {
	application, clientID, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "отклик не найден")
		}
		return err
	}
	if clientID != userID {
		return apperror.ErrForbidden
	}
	if application.ViewedByClient {
		return nil
	}
	return s.applications.MarkViewed(ctx, applicationID, application.OrderID, clientID)
}

// Respond принимает или отклоняет отклик. Доступно заказчику и администратору,
// принятие переводит заказ в работу и отклоняет остальные отклики.
func (s *ApplicationService) Respond(ctx context.Context, applicationID, userID uuid.UUID, role, status string) error {
	if status != models.ApplicationStatusAccepted && status != models.ApplicationStatusRejected {
		return apperror.New(apperror.ErrCodeValidation, "статус должен быть accepted или rejected")
	}

	application, clientID, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "отклик не найден")
		}
		return err
	}
	if clientID != userID && role != models.RoleAdmin {
		return apperror.ErrForbidden
	}
	if application.Status != models.ApplicationStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "отклик уже обработан")
	}

	return s.applications.UpdateStatus(ctx, applicationID, application.OrderID, status)
}

// ListByOrder возвращает отклики заказа. Список видят заказчик и администратор.
func (s *ApplicationService) ListByOrder(ctx context.Context, orderID, userID uuid.UUID, role string) ([]models.Application, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.ClientID != userID && role != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.applications.ListByOrder(ctx, orderID)
}
