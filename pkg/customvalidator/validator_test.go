package customvalidator

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneForm struct {
	Phone    string      `validate:"required,ru_phone"`
	Email    null.String `validate:"omitempty,email"`
	Building null.String `validate:"omitempty,max=5"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestRuPhone(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(phoneForm{Phone: "8 (999) 123-45-67"}))
	assert.NoError(t, v.Struct(phoneForm{Phone: "+79991234567"}))
	assert.Error(t, v.Struct(phoneForm{Phone: "12345"}))
}

func TestNullFields(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(phoneForm{Phone: "+79991234567", Email: null.StringFrom("a@b.ru")}))
	assert.Error(t, v.Struct(phoneForm{Phone: "+79991234567", Email: null.StringFrom("not-email")}))
	assert.Error(t, v.Struct(phoneForm{Phone: "+79991234567", Building: null.StringFrom("1234567")}))
	assert.NoError(t, v.Struct(phoneForm{Phone: "+79991234567", Building: null.String{}}))
}
