package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/jobs"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/service"
)

type ApplicationHandler struct {
	svc       *service.ApplicationService
	scheduler *jobs.Scheduler
}

func NewApplicationHandler(s *service.ApplicationService, scheduler *jobs.Scheduler) *ApplicationHandler {
	return &ApplicationHandler{svc: s, scheduler: scheduler}
}

// Create POST /orders/:id/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
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
		Message        string   `json:"message" binding:"required"`
		ProposedBudget *float64 `json:"proposed_budget"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректное тело запроса: "+err.Error())
		return
	}

	application, err := h.svc.Create(c.Request.Context(), orderID, userID, role, req.Message, req.ProposedBudget)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "отклик отправлен", application)
}

// ListByOrder GET /orders/:id/applications
func (h *ApplicationHandler) ListByOrder(c *gin.Context) {
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

	applications, err := h.svc.ListByOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "", applications)
}

// Respond PUT /orders/:id/applications/:applicationId
func (h *ApplicationHandler) Respond(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}
	role, _ := common.CurrentUserRole(c)

	applicationID, err := common.ParseUUIDParam(c, "applicationId")
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

	if err := h.svc.Respond(c.Request.Context(), applicationID, userID, role, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "отклик обработан", nil)
}

// MarkViewed POST /legal/applications/:applicationId/view
func (h *ApplicationHandler) MarkViewed(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	applicationID, err := common.ParseUUIDParam(c, "applicationId")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.MarkViewed(c.Request.Context(), applicationID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "отклик отмечен просмотренным", nil)
}

// ProcessIgnored POST /legal/process-ignored (админ)
// Ручной запуск прохода возвратов. Конкурентные запуски схлопываются
// с фоновым проходом планировщика.
func (h *ApplicationHandler) ProcessIgnored(c *gin.Context) {
	result, err := h.scheduler.RunSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "проход возвратов выполнен", result)
}
