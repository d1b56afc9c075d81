package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vkaryagin/freelance-market/internal/logger"
	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/repository"
)

type SeedUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, fullName, passwordHash, role string) (*models.User, error)
}

// SeedService создаёт демо-данные для разработки: учётки всех ролей,
// пополненные балансы и опубликованный заказ.
type SeedService struct {
	users  SeedUserRepository
	ledger LedgerRepository
	orders OrderRepository
}

func NewSeedService(users SeedUserRepository, ledger LedgerRepository, orders OrderRepository) *SeedService {
	return &SeedService{users: users, ledger: ledger, orders: orders}
}

type seedUser struct {
	email    string
	fullName string
	password string
	role     string
	balance  float64
}

// Seed идемпотентен: уже существующие учётки пропускаются.
func (s *SeedService) Seed(ctx context.Context) error {
	demo := []seedUser{
		{"admin@example.com", "Администратор", "admin123", models.RoleAdmin, 0},
		{"client@example.com", "Иван Заказчиков", "client123", models.RoleClient, 5000},
		{"freelancer@example.com", "Пётр Исполнителев", "freelancer123", models.RoleFreelancer, 1000},
	}

	var client *models.User
	for _, u := range demo {
		user, created, err := s.ensureUser(ctx, u)
		if err != nil {
			return fmt.Errorf("seed service: user %s %w", u.email, err)
		}
		if u.role == models.RoleClient {
			client = user
		}
		if !created {
			continue
		}
		if u.balance > 0 {
			if _, err := s.ledger.ApplyTransaction(ctx, repository.ApplyTransactionParams{
				UserID:      user.ID,
				Type:        models.TransactionTypeBonus,
				Amount:      u.balance,
				Description: "Стартовый бонус демо-учётки",
			}); err != nil {
				return fmt.Errorf("seed service: fund %s %w", u.email, err)
			}
		}
	}

	if client != nil {
		existing, err := s.orders.ListByClient(ctx, client.ID, 1, 0)
		if err != nil {
			return fmt.Errorf("seed service: check orders %w", err)
		}
		if len(existing) == 0 {
			budget := 15000.0
			if _, err := s.orders.Create(ctx, client.ID,
				"Лендинг для кофейни", "Нужен одностраничный сайт с меню и формой заказа", &budget); err != nil {
				return fmt.Errorf("seed service: create order %w", err)
			}
		}
	}

	logger.Log.Info("демо-данные готовы")
	return nil
}

func (s *SeedService) ensureUser(ctx context.Context, u seedUser) (*models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, u.email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	user, err := s.users.Create(ctx, u.email, u.fullName, string(hash), u.role)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
