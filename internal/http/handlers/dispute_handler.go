package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/service"
)

type DisputeHandler struct {
	svc *service.DisputeService
}

func NewDisputeHandler(s *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{svc: s}
}

// Open POST /disputes
func (h *DisputeHandler) Open(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	var req struct {
		OrderID     uuid.UUID `json:"order_id" binding:"required"`
		Reason      string    `json:"reason" binding:"required"`
		Description string    `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	dispute, err := h.svc.Open(c.Request.Context(), req.OrderID, userID, req.Reason, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "спор открыт", dispute)
}

// List GET /disputes
func (h *DisputeHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	disputes, err := h.svc.ListByUser(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", disputes)
}

// ListAll GET /disputes/all (админ)
func (h *DisputeHandler) ListAll(c *gin.Context) {
	disputes, err := h.svc.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", disputes)
}

// Get GET /disputes/:id
func (h *DisputeHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	thread, err := h.svc.GetThread(c.Request.Context(), disputeID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", thread)
}

// AddMessage POST /disputes/:id/messages
func (h *DisputeHandler) AddMessage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Message     string          `json:"message" binding:"required"`
		Attachments json.RawMessage `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	msg, err := h.svc.AddMessage(c.Request.Context(), disputeID, userID, role, req.Message, req.Attachments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "сообщение добавлено", msg)
}

// Resolve PUT /disputes/:id/resolve (админ)
func (h *DisputeHandler) Resolve(c *gin.Context) {
	adminID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	disputeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req struct {
		Resolution string     `json:"resolution" binding:"required"`
		WinnerID   *uuid.UUID `json:"winner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	dispute, err := h.svc.Resolve(c.Request.Context(), disputeID, adminID, req.Resolution, req.WinnerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "спор разрешён", dispute)
}
