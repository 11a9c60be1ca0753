package validation

import (
	"errors"
	"testing"

	"customer-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	City string `json:"city" validate:"required,max=5"`
}

type payload struct {
	Email string `json:"email" validate:"required,email"`
	Lines []line `json:"lines" validate:"dive"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Struct(payload{Email: "nope", Lines: []line{{City: "Pune"}, {City: "Bengaluru"}}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, map[string]string{
		"email":         "enter a valid email address",
		"lines[1].city": "ensure this field has no more than 5 characters",
	}, derr.Fields)
	assert.Equal(t, "invalid input", derr.Message)
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, New().Struct(payload{Email: "a@b.co"}))
}

func TestVar_RecordsUnderName(t *testing.T) {
	v := New()
	fields := map[string]string{}
	v.Var(fields, "phone", "", "required")
	v.Var(fields, "first_name", "Asha", "required,max=100")
	assert.Equal(t, map[string]string{"phone": "this field is required"}, fields)

	err := Result(fields)
	require.Error(t, err)
	assert.Equal(t, "phone: this field is required", err.Error())
}

func TestStructInto_Prefix(t *testing.T) {
	fields := map[string]string{}
	New().StructInto(fields, "addresses[2].", line{})
	assert.Equal(t, "this field is required", fields["addresses[2].city"])
}

func TestResult_EmptyIsNil(t *testing.T) {
	assert.NoError(t, Result(map[string]string{}))
}

func TestPatchString(t *testing.T) {
	v := New()
	fields := map[string]string{}

	absent := v.PatchString(fields, "city", domain.Optional[string]{}, "required")
	assert.False(t, absent.Set)

	trimmed := v.PatchString(fields, "city", domain.Some("  Pune "), "required,max=10")
	assert.Equal(t, domain.Some("Pune"), trimmed)

	v.PatchString(fields, "state", domain.Optional[string]{Set: true, Null: true}, "required")
	v.PatchString(fields, "pincode", domain.Some("   "), "required")

	assert.Equal(t, map[string]string{
		"state":   NotNull,
		"pincode": "this field is required",
	}, fields)
}
