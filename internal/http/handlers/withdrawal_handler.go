package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/service"
)

type WithdrawalHandler struct {
	svc *service.WithdrawalService
}

func NewWithdrawalHandler(s *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{svc: s}
}

// Create POST /finance/withdrawal
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	var req struct {
		Amount         float64 `json:"amount" binding:"required,gt=0"`
		PaymentMethod  string  `json:"payment_method" binding:"required"`
		PaymentDetails string  `json:"payment_details" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	request, err := h.svc.Create(c.Request.Context(), userID, req.Amount, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "запрос на вывод создан", request)
}

// List GET /finance/withdrawal
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	limit, offset := common.GetPagination(c)
	requests, err := h.svc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", requests)
}

// ListAll GET /finance/withdrawal/all (админ)
func (h *WithdrawalHandler) ListAll(c *gin.Context) {
	requests, err := h.svc.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", requests)
}

// Process PUT /finance/withdrawal/:id (админ)
func (h *WithdrawalHandler) Process(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Status       string  `json:"status" binding:"required"`
		AdminComment *string `json:"admin_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	request, err := h.svc.Process(c.Request.Context(), requestID, adminID, req.Status, req.AdminComment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "запрос обработан", request)
}
