package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StatusMapping(t *testing.T) {
	cases := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInsufficientFunds, http.StatusBadRequest},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusConflict},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := New(tc.code, "сообщение")
		assert.Equal(t, tc.status, err.HTTPStatus, string(tc.code))
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("низкоуровневая ошибка")
	err := Wrap(cause, ErrCodeInternal, "что-то пошло не так")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "низкоуровневая ошибка")
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	inner := New(ErrCodeInsufficientFunds, "недостаточно средств")
	wrapped := fmt.Errorf("service: %w", inner)

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeInsufficientFunds, appErr.Code)
	assert.True(t, IsInsufficientFunds(wrapped))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(ErrOrderNotFound))
	assert.True(t, IsForbidden(ErrForbidden))
	assert.False(t, IsConflict(ErrForbidden))
	assert.False(t, IsNotFound(errors.New("обычная ошибка")))
}
