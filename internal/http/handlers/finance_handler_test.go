package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/vkaryagin/freelance-market/internal/http/middleware"
)

// fakeAuth подставляет пользователя в контекст вместо полного JWT middleware.
func fakeAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func TestFinanceHandler_GetBalance_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FinanceHandler{svc: nil}
	r.GET("/finance/balance", handler.GetBalance)

	req, _ := http.NewRequest("GET", "/finance/balance", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestFinanceHandler_ListTransactions_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FinanceHandler{svc: nil}
	r.GET("/finance/transactions", handler.ListTransactions)

	req, _ := http.NewRequest("GET", "/finance/transactions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFinanceHandler_CreateTransaction_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FinanceHandler{svc: nil}
	r.POST("/finance/transactions", fakeAuth(uuid.New(), "admin"), handler.CreateTransaction)

	req, _ := http.NewRequest("POST", "/finance/transactions", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinanceHandler_CreateTransaction_ForbiddenForeignTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FinanceHandler{svc: nil}
	r.POST("/finance/transactions", fakeAuth(uuid.New(), "freelancer"), handler.CreateTransaction)

	body := `{"user_id":"` + uuid.NewString() + `","type":"bonus","amount":100}`
	req, _ := http.NewRequest("POST", "/finance/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWithdrawalHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WithdrawalHandler{svc: nil}
	r.POST("/finance/withdrawal", handler.Create)

	req, _ := http.NewRequest("POST", "/finance/withdrawal", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithdrawalHandler_Process_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WithdrawalHandler{svc: nil}
	r.PUT("/finance/withdrawal/:id", fakeAuth(uuid.New(), "admin"), handler.Process)

	req, _ := http.NewRequest("PUT", "/finance/withdrawal/not-a-uuid", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeHandler_Open_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &DisputeHandler{svc: nil}
	r.POST("/disputes", fakeAuth(uuid.New(), "client"), handler.Open)

	req, _ := http.NewRequest("POST", "/disputes", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisputeHandler_Get_InvalidUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &DisputeHandler{svc: nil}
	r.GET("/disputes/:id", fakeAuth(uuid.New(), "client"), handler.Get)

	req, _ := http.NewRequest("GET", "/disputes/bogus", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandler_MarkViewed_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ApplicationHandler{svc: nil}
	r.POST("/legal/applications/:applicationId/view", handler.MarkViewed)

	req, _ := http.NewRequest("POST", "/legal/applications/"+uuid.NewString()+"/view", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
