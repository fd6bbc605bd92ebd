package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorType]int{
		TypeValidation:   http.StatusBadRequest,
		TypeUnauthorized: http.StatusUnauthorized,
		TypeNotFound:     http.StatusNotFound,
		TypeConflict:     http.StatusConflict,
		TypeRateLimited:  http.StatusTooManyRequests,
		TypeExternal:     http.StatusBadGateway,
		TypeInternal:     http.StatusInternalServerError,
		ErrorType("??"):  http.StatusInternalServerError,
	}
	for typ, status := range cases {
		assert.Equal(t, status, (&Error{Type: typ}).HTTPStatus(), string(typ))
	}
}

func TestWithFieldAndResponse(t *testing.T) {
	err := ValidationError("").WithField("plate", "Mínimo 6 caracteres").WithField("title", "Informe o título")

	resp := err.ToResponse()
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "Mínimo 6 caracteres", resp.Fields["plate"])
	assert.Len(t, resp.Fields, 2)
	assert.Equal(t, "validation: 2 invalid fields", err.Error())
}

func TestAsThroughWrapping(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	wrapped := fmt.Errorf("list motos: %w", ExternalError("upstream down", cause))

	structured, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, TypeExternal, structured.Type)
	assert.True(t, IsType(wrapped, TypeExternal))
	assert.ErrorIs(t, wrapped, cause)
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	plain := AsStructuredError(errors.New("boom"))
	assert.Equal(t, TypeInternal, plain.Type)

	nf := NotFoundError("Moto não encontrada")
	assert.Same(t, nf, AsStructuredError(nf))
}
