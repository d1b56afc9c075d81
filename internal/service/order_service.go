package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type OrderRepository interface {
	Create(ctx context.Context, clientID uuid.UUID, title, description string, budget *float64) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListPublished(ctx context.Context, limit, offset int) ([]models.Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// OrderService заказы клиентов.
type OrderService struct {
	repo OrderRepository
}

func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// Create публикует новый заказ. Размещать заказы могут заказчики
// и администраторы.
func (s *OrderService) Create(ctx context.Context, clientID uuid.UUID, role, title, description string, budget *float64) (*models.Order, error) {
	if role != models.RoleClient && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "размещать заказы могут только заказчики")
	}
	if title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите название заказа")
	}
	if budget != nil && *budget <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "бюджет должен быть положительным")
	}
	return s.repo.Create(ctx, clientID, title, description, budget)
}

// GetByID возвращает заказ.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListPublished возвращает ленту опубликованных заказов.
func (s *OrderService) ListPublished(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListPublished(ctx, limit, offset)
}

// ListByClient возвращает заказы клиента.
func (s *OrderService) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

// UpdateStatus переводит заказ в новый статус. Доступно владельцу
// и администратору.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, userID uuid.UUID, role, status string) error {
	if !models.ValidOrderStatuses[status] {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый статус заказа")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return apperror.ErrOrderNotFound
		}
		return err
	}
	if order.ClientID != userID && role != models.RoleAdmin {
		return apperror.ErrForbidden
	}

	return s.repo.UpdateStatus(ctx, orderID, status)
}
