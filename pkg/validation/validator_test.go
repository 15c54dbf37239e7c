package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "helpdesk-core/pkg/errors"
)

type createSample struct {
	Name  string `validate:"required,max=10"`
	Email string `validate:"omitempty,custom_email"`
	Phone string `validate:"omitempty,phone"`
}

type patchSample struct {
	Name   null.String  `validate:"omitempty,min=2"`
	Rating null.Float64 `validate:"omitempty,gte=0,lte=5"`
}

func TestStruct_Create(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(createSample{Name: "Acme", Email: "a@acme.io", Phone: "+992 900 00 00 00"}))

	err := v.Struct(createSample{Email: "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Name обязательно")
	assert.Contains(t, err.Error(), "Email")
}

func TestStruct_NullTypes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(patchSample{}), "отсутствующие поля не проверяются")
	assert.NoError(t, v.Struct(patchSample{Name: null.StringFrom("ok"), Rating: null.Float64From(4.5)}))
	assert.Error(t, v.Struct(patchSample{Name: null.StringFrom("x")}))
	assert.Error(t, v.Struct(patchSample{Rating: null.Float64From(7)}))
}

func TestValidateFile(t *testing.T) {
	mime, err := ValidateFile(bytes.NewReader([]byte("%PDF-1.4 test")), 13, "ticket_attachment")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)

	_, err = ValidateFile(strings.NewReader("<html></html>"), 13, "avatar")
	assert.Error(t, err)

	_, err = ValidateFile(strings.NewReader("x"), 30*1024*1024, "ticket_attachment")
	assert.Error(t, err)

	_, err = ValidateFile(strings.NewReader("x"), 1, "unknown")
	assert.Error(t, err)
}
