package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vkaryagin/freelance-market/internal/logger"
	"github.com/vkaryagin/freelance-market/internal/metrics"
	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type RefundApplicationRepository interface {
	FindIgnored(ctx context.Context, olderThan time.Time) ([]models.IgnoredApplication, error)
	Refund(ctx context.Context, app models.IgnoredApplication, amount float64, reason string) (*models.Transaction, error)
}

// RefundService возвращает стоимость откликов, которые заказчики
// игнорировали дольше льготного периода.
type RefundService struct {
	applications  RefundApplicationRepository
	notifications *NotificationService
	gracePeriod   time.Duration
}

func NewRefundService(applications RefundApplicationRepository, notifications *NotificationService, gracePeriod time.Duration) *RefundService {
	return &RefundService{
		applications:  applications,
		notifications: notifications,
		gracePeriod:   gracePeriod,
	}
}

// ProcessIgnored один проход: находит игнорированные отклики и возвращает
// за каждый стоимость отклика фрилансеру. Каждый возврат идёт в своей
// транзакции, ошибка одного отклика не останавливает остальные.
func (s *RefundService) ProcessIgnored(ctx context.Context) (*models.SweepResult, error) {
	cutoff := time.Now().Add(-s.gracePeriod)
	ignored, err := s.applications.FindIgnored(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("refund service: find ignored %w", err)
	}

	result := &models.SweepResult{Processed: len(ignored)}
	for _, app := range ignored {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		reason := fmt.Sprintf("Отклик на заказ %q не был просмотрен заказчиком", app.OrderTitle)
		transaction, err := s.applications.Refund(ctx, app, models.ApplicationFee, reason)
		if err != nil {
			// Параллельный проход уже вернул этот отклик: не ошибка.
			if errors.Is(err, repository.ErrAlreadyRefunded) {
				continue
			}
			logger.Log.WithError(err).WithFields(logrus.Fields{
				"application_id": app.ID,
				"freelancer_id":  app.FreelancerID,
			}).Error("не удалось вернуть средства за игнорированный отклик")
			continue
		}

		result.Refunded++
		metrics.RefundSweepRefunded.Inc()
		s.notifyRefund(ctx, app, transaction)
	}

	if result.Refunded > 0 {
		logger.Log.WithFields(logrus.Fields{
			"processed": result.Processed,
			"refunded":  result.Refunded,
		}).Info("возвраты за игнорированные отклики выполнены")
	}

	return result, nil
}

func (s *RefundService) notifyRefund(ctx context.Context, app models.IgnoredApplication, transaction *models.Transaction) {
	relatedType := "transaction"
	s.notifications.Notify(ctx, app.FreelancerID, models.NotificationAdminMessage,
		"Возврат средств",
		fmt.Sprintf("Возврат %.0f ₽ за отклик на заказ %q: заказчик не просмотрел ваш отклик",
			transaction.Amount, app.OrderTitle),
		&transaction.ID, &relatedType)

	relatedTypeOrder := "order"
	s.notifications.Notify(ctx, app.ClientID, models.NotificationAdminMessage,
		"Игнорированный отклик",
		fmt.Sprintf("⚠️ Вы игнорировали отклик на заказ %q, фрилансеру возвращена стоимость отклика", app.OrderTitle),
		&app.OrderID, &relatedTypeOrder)
}
