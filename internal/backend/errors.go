package backend

import (
	"errors"
	"fmt"
	"time"
)

// NetworkError — транспортная ошибка вызова бэкенда (connectivity,
// таймаут, 5xx). Учитывается circuit breaker-ом как отказ.
type NetworkError struct {
	Err      error
	Op       string
	Resource string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError — запрошенная запись не найдена. Валидный негативный
// результат: breaker-ом НЕ учитывается.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: not found", e.Resource)
	}
	return fmt.Sprintf("%s/%s: not found", e.Resource, e.ID)
}

// ValidationError — некорректные параметры запроса (фильтры, пагинация).
// Отклоняется до сетевого вызова, breaker-ом не учитывается.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// CircuitOpenError — breaker открыт, вызов отклонен без обращения к
// бэкенду. UI показывает "temporarily unavailable" вместо общей ошибки.
type CircuitOpenError struct {
	RetryAt  time.Time
	Endpoint string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open: %s (retry at %s)", e.Endpoint, e.RetryAt.Format(time.RFC3339))
}

// IsNetwork сообщает, является ли ошибка транспортной
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsNotFound сообщает, является ли ошибка "запись не найдена"
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation сообщает, является ли ошибка ошибкой валидации
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCircuitOpen сообщает, отклонен ли вызов открытым breaker-ом
func IsCircuitOpen(err error) bool {
	var co *CircuitOpenError
	return errors.As(err, &co)
}

// CountsAsFailure сообщает, должен ли breaker учесть ошибку как отказ.
// NotFound и Validation — валидные ответы, CircuitOpen — собственный
// отказ breaker-а; отказом считается только транспортная ошибка.
func CountsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if IsNotFound(err) || IsValidation(err) || IsCircuitOpen(err) {
		return false
	}
	return true
}
