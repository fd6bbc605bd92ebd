package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/motofleet/internal/domain/models"
	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

func TestMotoInputRules(t *testing.T) {
	fields := Struct(models.MotoInput{Plate: "AB1"}.Normalize())

	assert.Equal(t, map[string]string{
		"title":    "validation.title.required",
		"subTitle": "validation.subTitle.required",
		"plate":    "validation.plate.min",
	}, fields)

	assert.Nil(t, Struct(models.MotoInput{Title: "Entrega", SubTitle: "pop", Plate: "ABC1D23"}.Normalize()))
}

func TestMotoInputBlankPlateIsRequired(t *testing.T) {
	fields := Struct(models.MotoInput{Title: "x", SubTitle: "e", Plate: "   "}.Normalize())
	assert.Equal(t, "validation.plate.required", fields["plate"])
}

func TestStockInputRules(t *testing.T) {
	fields := Struct(models.StockInput{Name: " "}.Normalize())
	assert.Equal(t, "validation.name.required", fields["name"])
	assert.Equal(t, "validation.quantity.required", fields["quantity"])

	negative := Struct(models.StockInput{Name: "Pátio", Quantity: models.IntPtr(-1)})
	assert.Equal(t, map[string]string{"quantity": "validation.quantity.min"}, negative)

	assert.Nil(t, Struct(models.StockInput{Name: "Pátio", Quantity: models.IntPtr(0)}))
}

func TestCredentialsRules(t *testing.T) {
	fields := Struct(models.Credentials{Email: "not-an-email", Password: "1234"})
	assert.Equal(t, map[string]string{
		"email": "validation.email.email",
		"senha": "validation.senha.min",
	}, fields)

	empty := Struct(models.Credentials{})
	assert.Equal(t, "validation.email.required", empty["email"])
	assert.Equal(t, "validation.senha.required", empty["senha"])
}

func TestProfileNameMinimum(t *testing.T) {
	assert.Equal(t, map[string]string{"nome": "validation.nome.min"}, Struct(models.Profile{Name: "A"}))
	assert.Nil(t, Struct(models.Profile{Name: "Ana"}))
}

func TestValidateReturnsFieldsError(t *testing.T) {
	err := Validate(models.Profile{Name: ""})
	require.Error(t, err)

	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.TypeValidation, structured.Type)
	assert.Equal(t, "validation.nome.min", structured.Fields["nome"])

	assert.NoError(t, Validate(models.Profile{Name: "Ana"}))
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, *q)

	q, err = ParseQuantity("")
	require.NoError(t, err)
	assert.Nil(t, q)

	_, err = ParseQuantity("doze")
	structured, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, KeyInvalidQuantity, structured.Fields["quantity"])
}
