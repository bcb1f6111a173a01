package simulator

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind classifica as respostas de erro do simulador.
type ErrorKind string

const (
	BadRequest         ErrorKind = "bad_request"
	NotFound           ErrorKind = "not_found"
	Unauthorized       ErrorKind = "unauthorized"
	RateLimited        ErrorKind = "rate_limited"
	ServiceUnavailable ErrorKind = "service_unavailable"
	ServerError        ErrorKind = "server_error"
)

var kindStatus = map[ErrorKind]int{
	BadRequest:         http.StatusBadRequest,
	NotFound:           http.StatusNotFound,
	Unauthorized:       http.StatusUnauthorized,
	RateLimited:        http.StatusTooManyRequests,
	ServiceUnavailable: http.StatusServiceUnavailable,
	ServerError:        http.StatusInternalServerError,
}

var faultDescriptions = map[ErrorKind]string{
	BadRequest:         "Simulated Bad Request",
	NotFound:           "Simulated Not Found",
	Unauthorized:       "Simulated Unauthorized Access",
	RateLimited:        "Simulated Rate Limit Exceeded",
	ServiceUnavailable: "Simulated Service Unavailable",
	ServerError:        "Simulated Server Error",
}

// ParseErrorKind converte o nome configurado (ex: "rate_limited") no tipo.
func ParseErrorKind(s string) (ErrorKind, error) {
	k := ErrorKind(s)
	if _, ok := kindStatus[k]; !ok {
		return "", fmt.Errorf("tipo de erro desconhecido: '%s'", s)
	}
	return k, nil
}

// Status retorna o código HTTP associado.
func (k ErrorKind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error é o erro tipado devolvido ao cliente como {"status": ..., "description": ...}.
type Error struct {
	Kind        ErrorKind
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status(), e.Kind, e.Description)
}

// Status retorna o código HTTP do erro.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// MarshalJSON serializa no formato de erro dos simuladores.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status      int    `json:"status"`
		Description string `json:"description"`
	}{e.Status(), e.Description})
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}
