package api

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromStatus(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		kind    error
		message string
	}{
		"400 default":    {400, "", ErrValidation, "Requisição inválida."},
		"401 default":    {401, "", ErrUnauthorized, "Não autorizado. Faça login novamente."},
		"403 default":    {403, "", ErrForbidden, "Acesso negado."},
		"404 default":    {404, "", ErrNotFound, "Recurso não encontrado."},
		"409 default":    {409, "", ErrConflict, "Conflito. Este recurso já existe."},
		"422 default":    {422, "", ErrValidation, "Dados inválidos."},
		"429 fixed":      {429, `{"message":"slow down"}`, ErrRateLimited, "Muitas requisições. Aguarde um momento."},
		"500 default":    {500, "", ErrServer, "Erro no servidor. Tente novamente mais tarde."},
		"503 default":    {503, "", ErrServer, "Erro no servidor. Tente novamente mais tarde."},
		"teapot unknown": {418, "", ErrUnknown, "Erro desconhecido (418)"},

		"message wins":    {400, `{"message":"Email já cadastrado"}`, ErrValidation, "Email já cadastrado"},
		"error field":     {404, `{"error":"no such pilot"}`, ErrNotFound, "no such pilot"},
		"first field msg": {422, `{"errors":{"email":["Email inválido"]}}`, ErrValidation, "Email inválido"},
		"garbage body":    {500, `<html>oops</html>`, ErrServer, "Erro no servidor. Tente novamente mais tarde."},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ErrorFromStatus(tc.status, []byte(tc.body))
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.message, err.Message)
			assert.Equal(t, tc.status, err.Status)
		})
	}
}

func TestErrorFromStatusKeepsFieldErrors(t *testing.T) {
	err := ErrorFromStatus(422, []byte(`{"message":"Dados inválidos","errors":{"email":["inválido"],"name":["obrigatório"]}}`))
	require.NotNil(t, err.Fields)
	assert.Equal(t, []string{"inválido"}, err.Fields["email"])
	assert.Equal(t, []string{"obrigatório"}, err.Fields["name"])
}

func TestErrorFromTransport(t *testing.T) {
	deadline := &url.Error{Op: "Post", URL: "http://x", Err: context.DeadlineExceeded}
	err := ErrorFromTransport(deadline)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "Tempo de conexão esgotado. Tente novamente.", err.Message)

	refused := &url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")}
	err = ErrorFromTransport(refused)
	assert.ErrorIs(t, err, ErrNetworkUnavailable)
	assert.Equal(t, "Erro de conexão. Verifique sua internet.", err.Message)
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("root")
	err := sessionInvalidError(cause)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 401, err.Status)
}
