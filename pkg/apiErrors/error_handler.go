package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação
	ErrMissingToken = "AUTH_001" // Header Authorization ausente
	ErrInvalidToken = "AUTH_006" // Token inválido
	ErrExpiredToken = "AUTH_007" // Token expirado

	// Erros de validação
	ErrInvalidRequest   = "VAL_001"
	ErrRouteNotFound    = "VAL_004"
	ErrMethodNotAllowed = "VAL_005"

	// Erros de execução
	ErrRunInProgress = "RUN_001" // Já existe uma execução em andamento
	ErrRunNotFound   = "RUN_002" // Nenhuma execução registrada

	// Erros do servidor
	ErrInternalServer    = "SRV_001"
	ErrDatabaseOperation = "SRV_002"
	ErrNotConfigured     = "SRV_005" // Recurso opcional desabilitado
)

var httpStatusMap = map[string]int{
	ErrMissingToken:      http.StatusUnauthorized,
	ErrInvalidToken:      http.StatusUnauthorized,
	ErrExpiredToken:      http.StatusUnauthorized,
	ErrInvalidRequest:    http.StatusBadRequest,
	ErrRouteNotFound:     http.StatusNotFound,
	ErrMethodNotAllowed:  http.StatusMethodNotAllowed,
	ErrRunInProgress:     http.StatusConflict,
	ErrRunNotFound:       http.StatusNotFound,
	ErrInternalServer:    http.StatusInternalServerError,
	ErrDatabaseOperation: http.StatusInternalServerError,
	ErrNotConfigured:     http.StatusNotImplemented,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Status devolve o status HTTP de um código; códigos desconhecidos viram 500
func Status(code string) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	_ = json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "unknown error",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
