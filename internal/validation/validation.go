// Package validation wraps go-playground/validator and reports failures as
// domain validation errors keyed by json field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"customer-accounts/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Validator validates input structs and single values.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields by their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and returns a *domain.Error with per-field messages.
func (v *Validator) Struct(s any) error {
	fields := map[string]string{}
	v.StructInto(fields, "", s)
	return Result(fields)
}

// StructInto validates s and records failures in fields under prefix.
func (v *Validator) StructInto(fields map[string]string, prefix string, s any) {
	err := v.v.Struct(s)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fields[strings.TrimSuffix(prefix, ".")+"non_field_errors"] = err.Error()
		return
	}
	for _, fe := range ve {
		fields[prefix+fieldPath(fe.Namespace())] = Message(fe)
	}
}

// Var validates one value against tag and records a failure under name.
func (v *Validator) Var(fields map[string]string, name string, value any, tag string) {
	err := v.v.Var(value, tag)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fields[name] = Message(ve[0])
		return
	}
	fields[name] = err.Error()
}

// NotNull is reported for a patch field sent as JSON null that cannot be cleared.
const NotNull = "this field may not be null"

// PatchString trims a present patch field and validates it against tag.
// Null is rejected; absent fields pass through untouched.
func (v *Validator) PatchString(fields map[string]string, name string, o domain.Optional[string], tag string) domain.Optional[string] {
	if !o.Set {
		return o
	}
	if o.Null {
		fields[name] = NotNull
		return o
	}
	val := strings.TrimSpace(o.Value)
	v.Var(fields, name, val, tag)
	return domain.Some(val)
}

// Result converts collected field messages into an error, or nil when empty.
func Result(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.Validation(summary(fields), fields)
}

// Message renders a field error in words.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func fieldPath(namespace string) string {
	// Drop the root struct name: "RegisterInput.addresses[0].city" -> "addresses[0].city".
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func summary(fields map[string]string) string {
	if len(fields) == 1 {
		for name, msg := range fields {
			return name + ": " + msg
		}
	}
	return "invalid input"
}
