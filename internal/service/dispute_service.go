package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type DisputeRepository interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetThread(ctx context.Context, id uuid.UUID) (*models.DisputeThread, error)
	AddMessage(ctx context.Context, disputeID, userID uuid.UUID, message string, attachments json.RawMessage) (*models.DisputeMessage, error)
	Resolve(ctx context.Context, disputeID, adminID uuid.UUID, resolution string, winnerID *uuid.UUID) (*models.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]models.Dispute, error)
	ListAll(ctx context.Context, status string) ([]models.Dispute, error)
}

type DisputeOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// DisputeService споры между сторонами заказа.
type DisputeService struct {
	disputes      DisputeRepository
	orders        DisputeOrderRepository
	notifications *NotificationService
}

func NewDisputeService(disputes DisputeRepository, orders DisputeOrderRepository, notifications *NotificationService) *DisputeService {
	return &DisputeService{disputes: disputes, orders: orders, notifications: notifications}
}

const relatedTypeDispute = "dispute"

// Open открывает спор по заказу. Инициатор должен быть стороной заказа,
// вторая сторона подставляется автоматически. По заказу может существовать
// только один незакрытый спор.
func (s *DisputeService) Open(ctx context.Context, orderID, initiatorID uuid.UUID, reason, description string) (*models.Dispute, error) {
	if reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите причину спора")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.FreelancerID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "по заказу без исполнителя спор открыть нельзя")
	}

	var againstID uuid.UUID
	switch initiatorID {
	case order.ClientID:
		againstID = *order.FreelancerID
	case *order.FreelancerID:
		againstID = order.ClientID
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "вы не являетесь стороной этого заказа")
	}

	dispute := &models.Dispute{
		OrderID:        orderID,
		OpenedByUserID: initiatorID,
		AgainstUserID:  againstID,
		Reason:         reason,
		Description:    description,
	}
	if err := s.disputes.Create(ctx, dispute); err != nil {
		if errors.Is(err, repository.ErrOpenDisputeExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "по этому заказу уже открыт спор")
		}
		return nil, err
	}

	relatedType := relatedTypeDispute
	s.notifications.Notify(ctx, againstID, models.NotificationDisputeOpened,
		"Открыт спор", "По вашему заказу открыт спор: "+reason, &dispute.ID, &relatedType)

	return dispute, nil
}

// GetThread возвращает спор с сообщениями и историей.
// Доступ только сторонам спора и администратору.
func (s *DisputeService) GetThread(ctx context.Context, disputeID, userID uuid.UUID, role string) (*models.DisputeThread, error) {
	thread, err := s.disputes.GetThread(ctx, disputeID)
	if err != nil {
		return nil, s.translate(err)
	}
	if !canAccessDispute(&thread.Dispute, userID, role) {
		return nil, apperror.ErrForbidden
	}
	return thread, nil
}

// AddMessage добавляет сообщение в спор. Писать могут стороны и администратор,
// в закрытый спор писать нельзя.
func (s *DisputeService) AddMessage(ctx context.Context, disputeID, userID uuid.UUID, role, message string, attachments json.RawMessage) (*models.DisputeMessage, error) {
	if message == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "сообщение не может быть пустым")
	}
	if len(attachments) == 0 {
		attachments = json.RawMessage("[]")
	}

	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, s.translate(err)
	}
	if !canAccessDispute(dispute, userID, role) {
		return nil, apperror.ErrForbidden
	}
	if dispute.Status == models.DisputeStatusResolved {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "спор уже закрыт")
	}

	msg, err := s.disputes.AddMessage(ctx, disputeID, userID, message, attachments)
	if err != nil {
		return nil, s.translate(err)
	}

	// Уведомляем противоположную сторону.
	recipient := dispute.OpenedByUserID
	if userID == dispute.OpenedByUserID {
		recipient = dispute.AgainstUserID
	}
	relatedType := relatedTypeDispute
	s.notifications.Notify(ctx, recipient, models.NotificationDisputeMessage,
		"Новое сообщение в споре", "В споре появилось новое сообщение", &dispute.ID, &relatedType)

	return msg, nil
}

// Resolve закрывает спор решением администратора. Обе стороны получают
// уведомление с текстом решения.
func (s *DisputeService) Resolve(ctx context.Context, disputeID, adminID uuid.UUID, resolution string, winnerID *uuid.UUID) (*models.Dispute, error) {
	if resolution == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "укажите решение по спору")
	}

	dispute, err := s.disputes.Resolve(ctx, disputeID, adminID, resolution, winnerID)
	if err != nil {
		return nil, s.translate(err)
	}

	relatedType := relatedTypeDispute
	for _, recipient := range []uuid.UUID{dispute.OpenedByUserID, dispute.AgainstUserID} {
		s.notifications.Notify(ctx, recipient, models.NotificationDisputeResolved,
			"Спор разрешён", "Решение по спору: "+resolution, &dispute.ID, &relatedType)
	}

	return dispute, nil
}

// ListByUser возвращает споры, где пользователь является стороной.
func (s *DisputeService) ListByUser(ctx context.Context, userID uuid.UUID, status string) ([]models.Dispute, error) {
	if err := validateDisputeStatus(status); err != nil {
		return nil, err
	}
	return s.disputes.ListByUser(ctx, userID, status)
}

// ListAll возвращает все споры (админка).
func (s *DisputeService) ListAll(ctx context.Context, status string) ([]models.Dispute, error) {
	if err := validateDisputeStatus(status); err != nil {
		return nil, err
	}
	return s.disputes.ListAll(ctx, status)
}

func (s *DisputeService) translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDisputeNotFound):
		return apperror.New(apperror.ErrCodeNotFound, "спор не найден")
	case errors.Is(err, repository.ErrDisputeAlreadyClosed):
		return apperror.New(apperror.ErrCodeInvalidState, "спор уже закрыт")
	}
	return err
}

func canAccessDispute(d *models.Dispute, userID uuid.UUID, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return d.OpenedByUserID == userID || d.AgainstUserID == userID
}

func validateDisputeStatus(status string) error {
	switch status {
	case "", models.DisputeStatusOpen, models.DisputeStatusInReview, models.DisputeStatusResolved:
		return nil
	}
	return apperror.New(apperror.ErrCodeValidation, "недопустимый статус спора")
}
