package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single failed rule, addressed by its dotted JSON path.
type Violation struct {
	Path  string
	Tag   string
	Param string
}

// Validator wraps validator/v10 so that violations are reported by JSON path
// (member2.email) rather than Go field name (Member2.Email).
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that names fields after their json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Var checks a single value against a rule such as "required,min=2".
// It returns nil when the value satisfies every tag.
func (v *Validator) Var(value any, rule string) (*Violation, error) {
	err := v.validate.Var(value, rule)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return nil, err
	}
	fe := fieldErrs[0]
	return &Violation{Tag: fe.Tag(), Param: fe.Param()}, nil
}

// Struct validates every field of s and returns all violations in field order.
func (v *Validator) Struct(s any) ([]Violation, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Path:  trimRoot(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return violations, nil
}

// trimRoot drops the struct name validator puts in front of the namespace.
func trimRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// FormatMessage creates a human-readable message for a violated tag when no
// field-specific message exists.
func FormatMessage(field string, tag string, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + param
	case "eq":
		return field + " must be " + param
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	default:
		return field + " validation failed: " + tag
	}
}
