package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, userID uuid.UUID, amount float64, method, details string) (*models.WithdrawalRequest, error)
	Process(ctx context.Context, requestID, adminID uuid.UUID, status string, adminComment *string) (*models.WithdrawalRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error)
	ListAll(ctx context.Context, status string) ([]models.WithdrawalRequestAdminView, error)
}

// WithdrawalService правила вывода средств поверх репозитория.
type WithdrawalService struct {
	repo          WithdrawalRepository
	notifications *NotificationService
}

func NewWithdrawalService(repo WithdrawalRepository, notifications *NotificationService) *WithdrawalService {
	return &WithdrawalService{repo: repo, notifications: notifications}
}

// Create создаёт запрос на вывод. Сумма резервируется сразу.
func (s *WithdrawalService) Create(ctx context.Context, userID uuid.UUID, amount float64, method, details string) (*models.WithdrawalRequest, error) {
	if amount < models.MinWithdrawalAmount {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("минимальная сумма вывода %.0f ₽", models.MinWithdrawalAmount))
	}
	if method == "" || details == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите способ вывода и реквизиты")
	}

	request, err := s.repo.Create(ctx, userID, amount, method, details)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, apperror.ErrInsufficientFunds
		}
		return nil, err
	}
	return request, nil
}

// Process завершает или отклоняет запрос. Статус принимает только
// терминальные значения, повторная обработка даёт конфликт.
func (s *WithdrawalService) Process(ctx context.Context, requestID, adminID uuid.UUID, status string, adminComment *string) (*models.WithdrawalRequest, error) {
	if status != models.WithdrawalStatusCompleted && status != models.WithdrawalStatusRejected {
		return nil, apperror.New(apperror.ErrCodeValidation, "статус должен быть completed или rejected")
	}

	request, err := s.repo.Process(ctx, requestID, adminID, status, adminComment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWithdrawalNotFound):
			return nil, apperror.New(apperror.ErrCodeNotFound, "запрос на вывод не найден")
		case errors.Is(err, repository.ErrWithdrawalAlreadyProcessed):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "запрос на вывод уже обработан")
		}
		return nil, err
	}

	title := "Вывод средств выполнен"
	message := fmt.Sprintf("Запрос на вывод %.2f ₽ выполнен", request.Amount)
	if status == models.WithdrawalStatusRejected {
		title = "Вывод средств отклонён"
		message = fmt.Sprintf("Запрос на вывод %.2f ₽ отклонён, средства возвращены на баланс", request.Amount)
		if adminComment != nil && *adminComment != "" {
			message += ". Комментарий: " + *adminComment
		}
	}
	relatedType := "withdrawal"
	s.notifications.Notify(ctx, request.UserID, models.NotificationAdminMessage, title, message, &request.ID, &relatedType)

	return request, nil
}

// ListByUser возвращает запросы пользователя.
func (s *WithdrawalService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListAll возвращает все запросы для админки.
func (s *WithdrawalService) ListAll(ctx context.Context, status string) ([]models.WithdrawalRequestAdminView, error) {
	if status != "" && status != models.WithdrawalStatusPending &&
		status != models.WithdrawalStatusCompleted && status != models.WithdrawalStatusRejected {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус")
	}
	return s.repo.ListAll(ctx, status)
}
