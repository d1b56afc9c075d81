package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/models"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/repository"
	"github.com/vkaryagin/freelance-market/internal/service"
)

type FinanceHandler struct {
	svc *service.FinanceService
}

func NewFinanceHandler(s *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{svc: s}
}

// GetBalance GET /finance/balance
func (h *FinanceHandler) GetBalance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	balance, err := h.svc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", balance)
}

// ListTransactions GET /finance/transactions
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	limit, offset := common.GetPagination(c)
	page, err := h.svc.ListTransactions(c.Request.Context(), userID,
		c.Query("type"), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", page)
}

// CreateTransaction POST /finance/transactions.
// Админ создаёт транзакцию любому пользователю, остальные только себе.
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	var req struct {
		UserID        uuid.UUID  `json:"user_id" binding:"required"`
		Type          string     `json:"type" binding:"required"`
		Amount        float64    `json:"amount" binding:"required"`
		Description   string     `json:"description"`
		OrderID       *uuid.UUID `json:"order_id"`
		RelatedUserID *uuid.UUID `json:"related_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	if role != models.RoleAdmin && req.UserID != userID {
		response.Error(c, apperror.ErrForbidden)
		return
	}

	transaction, err := h.svc.CreateTransaction(c.Request.Context(), repository.ApplyTransactionParams{
		UserID:        req.UserID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		OrderID:       req.OrderID,
		RelatedUserID: req.RelatedUserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "транзакция применена", transaction)
}

// GetStats GET /finance/stats (админ)
func (h *FinanceHandler) GetStats(c *gin.Context) {
	stats, breakdown, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", gin.H{
		"stats":     stats,
		"breakdown": breakdown,
	})
}
