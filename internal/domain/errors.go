package domain

import (
	"errors"
	"fmt"
	"time"
)

// Taxonomia de erros da automação
var (
	// Falha de autenticação: aborta a execução
	ErrAuth = errors.New("authentication failed")
	// 429 da plataforma: tratado apenas dentro da política de retry
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// 5xx ou timeout: reexecutado e escalado para ErrFatalAPI ao esgotar tentativas
	ErrTransientAPI = errors.New("transient api error")
	ErrFatalAPI     = errors.New("fatal api error")
	// Configuração inválida: aborta antes de qualquer chamada
	ErrValidation    = errors.New("validation error")
	ErrReportTimeout = errors.New("report timed out")
	ErrMutation      = errors.New("mutation failed")
)

// APIError carrega o contexto de uma falha na API de anúncios
type APIError struct {
	Kind       error         // Um dos sentinelas acima
	Operation  string        // Operação do cliente (ex: listCampaigns)
	StatusCode int           // Status HTTP, quando houver
	Message    string        // Mensagem retornada pela plataforma
	RetryAfter time.Duration // Valor de Retry-After em respostas 429
	Err        error         // Causa original
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Operation, e.Kind.Error())
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap permite errors.Is tanto no tipo quanto na causa
func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func NewAPIError(kind error, operation string, statusCode int, message string) *APIError {
	return &APIError{
		Kind:       kind,
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewFatalAPIError converte a última falha de uma operação em erro terminal
func NewFatalAPIError(operation string, attempts int, cause error) *APIError {
	return &APIError{
		Kind:      ErrFatalAPI,
		Operation: operation,
		Message:   fmt.Sprintf("gave up after %d attempts", attempts),
		Err:       cause,
	}
}

// IsRetryable indica se a política de retry deve tentar novamente
func IsRetryable(err error) bool {
	if errors.Is(err, ErrFatalAPI) || errors.Is(err, ErrAuth) {
		return false
	}
	return errors.Is(err, ErrTransientAPI) || errors.Is(err, ErrRateLimitExceeded)
}

// RetryAfter extrai o atraso sugerido pela plataforma
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

// ValidationError descreve uma configuração inválida
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
