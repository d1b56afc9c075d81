package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/service"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: s}
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Budget      *float64 `json:"budget"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	order, err := h.svc.Create(c.Request.Context(), userID, role, req.Title, req.Description, req.Budget)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "заказ опубликован", order)
}

// Get GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.svc.GetByID(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", order)
}

// List GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	orders, err := h.svc.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", orders)
}

// ListMine GET /orders/my
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.svc.ListByClient(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", orders)
}

// UpdateStatus PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), orderID, userID, role, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "статус заказа обновлён", nil)
}
