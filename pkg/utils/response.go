package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "service-crm/pkg/errors"
	"service-crm/pkg/types"
)

type HttpResponse struct {
	Status     bool              `json:"status"`
	Body       interface{}       `json:"body,omitempty"`
	Message    string            `json:"message"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
}

// ErrorList сопоставляет доменные ошибки с HTTP-кодами. Порядок важен: проверка идет по errors.Is.
var ErrorList = []struct {
	Err  error
	Code int
}{
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrInvalidPhone, http.StatusUnprocessableEntity},
	{apperrors.ErrInvalidTransition, http.StatusConflict},
	{apperrors.ErrManagerUnavailable, http.StatusConflict},
	{apperrors.ErrHasActiveOrder, http.StatusConflict},
	{apperrors.ErrConcurrentModification, http.StatusConflict},
	{apperrors.ErrAlreadyExists, http.StatusConflict},
	{apperrors.ErrNotManager, http.StatusUnprocessableEntity},
	{apperrors.ErrInvalidManagerStatus, http.StatusUnprocessableEntity},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrTokenIsNotAccess, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrUserIDNotFoundInContext, http.StatusUnauthorized},
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

func PaginatedResponse(ctx echo.Context, body interface{}, pagination types.Pagination, message string) error {
	return ctx.JSON(http.StatusOK, &HttpResponse{
		Status:     true,
		Body:       body,
		Message:    message,
		Pagination: &pagination,
	})
}

// ErrorStatus возвращает HTTP-код и сообщение для ошибки.
func ErrorStatus(err error) (int, string) {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code, httpErr.Message
	}
	if apperrors.IsInvalidInput(err) {
		return http.StatusBadRequest, err.Error()
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return echoErr.Code, msg
		}
		return echoErr.Code, http.StatusText(echoErr.Code)
	}
	for _, item := range ErrorList {
		if errors.Is(err, item.Err) {
			return item.Code, err.Error()
		}
	}
	return http.StatusInternalServerError, "Внутренняя ошибка сервера"
}

func ErrorResponse(ctx echo.Context, err error) error {
	code, message := ErrorStatus(err)
	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	})
}
