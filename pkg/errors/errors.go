package errors

import (
	"errors"
	"fmt"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrTooManyAttempts    = fmt.Errorf("слишком много попыток входа, попробуйте позже")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Жизненный цикл заявки
	ErrInvalidPhone           = fmt.Errorf("некорректный номер телефона")
	ErrInvalidTransition      = fmt.Errorf("недопустимый переход статуса")
	ErrManagerUnavailable     = fmt.Errorf("менеджер недоступен для назначения")
	ErrHasActiveOrder         = fmt.Errorf("у менеджера есть активная заявка")
	ErrConcurrentModification = fmt.Errorf("запись изменена параллельно, повторите попытку")
	ErrNotManager             = fmt.Errorf("пользователь не является менеджером")
	ErrInvalidManagerStatus   = fmt.Errorf("недопустимый статус менеджера")

	// Доставка уведомлений
	ErrNoDeliveryAddress = fmt.Errorf("у получателя нет адреса для выбранного канала")
	ErrDeliveryTimeout   = fmt.Errorf("превышено время доставки уведомления")

	// Общие
	ErrNotFound      = fmt.Errorf("запись не найдена")
	ErrAlreadyExists = fmt.Errorf("запись уже существует")
	ErrBadRequest    = fmt.Errorf("неверный запрос")
)

// InvalidInputError - ошибка валидации входных данных.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// HttpError - ошибка с готовым HTTP-кодом и сообщением для пользователя.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}
