package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind sentinels. Callers match with errors.Is; every failure that leaves
// this package wraps exactly one of these.
var (
	ErrNetworkUnavailable = errors.New("api: network unavailable")
	ErrTimeout            = errors.New("api: timeout")
	ErrUnauthorized       = errors.New("api: unauthorized")
	ErrTokenExpired       = errors.New("api: token expired")
	ErrForbidden          = errors.New("api: forbidden")
	ErrNotFound           = errors.New("api: not found")
	ErrValidation         = errors.New("api: validation failed")
	ErrConflict           = errors.New("api: conflict")
	ErrRateLimited        = errors.New("api: rate limited")
	ErrServer             = errors.New("api: server error")
	ErrMalformedResponse  = errors.New("api: malformed response")
	ErrSessionInvalid     = errors.New("api: session invalid")
	ErrUnknown            = errors.New("api: unknown error")
)

// Error is the normalized API failure. Message is user-facing (the product
// speaks Portuguese); Status carries the HTTP code when there was a response.
type Error struct {
	kind    error
	Message string
	Status  int
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause so that
// errors.Is works against either.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newError(kind error, message string, status int) *Error {
	return &Error{kind: kind, Message: message, Status: status}
}

// errorBody is the backend's error envelope. Field names are fixed by the
// wire contract.
type errorBody struct {
	Message string              `json:"message"`
	Err     string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
	Status  int                 `json:"status"`
	Code    string              `json:"code"`
}

func (b errorBody) displayMessage() string {
	if b.Message != "" {
		return b.Message
	}
	if b.Err != "" {
		return b.Err
	}
	for _, msgs := range b.Errors {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// ErrorFromStatus maps an HTTP error response onto the taxonomy. The mapping
// is deterministic; the backend message wins over the canned one when present.
func ErrorFromStatus(status int, body []byte) *Error {
	var parsed errorBody
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsed)
	}
	msg := parsed.displayMessage()

	var e *Error
	switch {
	case status == 400:
		e = newError(ErrValidation, fallback(msg, "Requisição inválida."), status)
	case status == 401:
		e = newError(ErrUnauthorized, fallback(msg, "Não autorizado. Faça login novamente."), status)
	case status == 403:
		e = newError(ErrForbidden, fallback(msg, "Acesso negado."), status)
	case status == 404:
		e = newError(ErrNotFound, fallback(msg, "Recurso não encontrado."), status)
	case status == 409:
		e = newError(ErrConflict, fallback(msg, "Conflito. Este recurso já existe."), status)
	case status == 422:
		e = newError(ErrValidation, fallback(msg, "Dados inválidos."), status)
	case status == 429:
		e = newError(ErrRateLimited, "Muitas requisições. Aguarde um momento.", status)
	case status >= 500 && status <= 599:
		e = newError(ErrServer, fallback(msg, "Erro no servidor. Tente novamente mais tarde."), status)
	default:
		e = newError(ErrUnknown, fallback(msg, fmt.Sprintf("Erro desconhecido (%d)", status)), status)
	}
	e.Fields = parsed.Errors
	return e
}

// ErrorFromTransport normalizes connection-level failures.
func ErrorFromTransport(err error) *Error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{kind: ErrTimeout, Message: "Tempo de conexão esgotado. Tente novamente.", cause: err}
	case errors.As(err, &nerr) && nerr.Timeout():
		return &Error{kind: ErrTimeout, Message: "Tempo de conexão esgotado. Tente novamente.", cause: err}
	default:
		return &Error{kind: ErrNetworkUnavailable, Message: "Erro de conexão. Verifique sua internet.", cause: err}
	}
}

func sessionInvalidError(cause error) *Error {
	return &Error{kind: ErrSessionInvalid, Message: "Sessão inválida. Faça login novamente.", Status: 401, cause: cause}
}

func malformedError(cause error) *Error {
	return &Error{kind: ErrMalformedResponse, Message: "Erro ao processar resposta do servidor.", cause: cause}
}

// asError unwraps through url.Error and friends to find a taxonomy error
// produced inside the transport pipeline.
func asError(err error, target **Error) bool {
	return errors.As(err, target)
}

func fallback(msg, def string) string {
	if msg != "" {
		return msg
	}
	return def
}
