package models

// Роли пользователей платформы.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// Финансовые константы платформы.
const (
	// MinWithdrawalAmount минимальная сумма вывода средств, в рублях.
	MinWithdrawalAmount = 100.0
	// ApplicationFee стоимость отклика на заказ, в рублях.
	ApplicationFee = 50.0
)

// OrderStatus константы статусов заказов.
const (
	OrderStatusDraft      = "draft"
	OrderStatusPublished  = "published"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ApplicationStatus константы статусов откликов.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
	ApplicationStatusRefunded = "refunded"
)

// ValidOrderStatuses список валидных статусов заказов.
var ValidOrderStatuses = map[string]bool{
	OrderStatusDraft:      true,
	OrderStatusPublished:  true,
	OrderStatusInProgress: true,
	OrderStatusCompleted:  true,
	OrderStatusCancelled:  true,
}
