package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkaryagin/freelance-market/internal/logger"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
)

// Envelope единый формат ответа API.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// OK отправляет успешный ответ.
func OK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Error переводит ошибку сервиса в HTTP ответ. Единственная точка
// трансляции: AppError берёт свой статус и сообщение, всё остальное
// логируется и уходит как 500 без деталей.
func Error(c *gin.Context, err error) {
	if appErr, ok := apperror.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, Envelope{
			Success: false,
			Message: appErr.Message,
			Errors:  gin.H{"code": appErr.Code},
		})
		return
	}

	logger.Log.WithError(err).WithField("path", c.FullPath()).Error("внутренняя ошибка")
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "внутренняя ошибка сервера",
	})
}

// BadRequest отправляет 400 с сообщением валидации.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}
