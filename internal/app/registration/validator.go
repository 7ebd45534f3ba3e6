package registration

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/validation"
)

// Validator applies the constraints declared on models.Registration.
type Validator struct {
	rules         *validation.Validator
	uniqueMembers bool
	order         map[string]int
}

// ValidatorOption configures a Validator
type ValidatorOption func(*Validator)

// WithUniqueMembers makes ValidateAll report a member whose email or
// registration number repeats the leader's or an earlier member's.
func WithUniqueMembers(enabled bool) ValidatorOption {
	return func(v *Validator) {
		v.uniqueMembers = enabled
	}
}

// NewValidator creates a new validator
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		rules: validation.New(),
		order: make(map[string]int),
	}
	for i, path := range models.FieldPaths() {
		v.order[path] = i
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateField checks a single value against the rule of path. It returns a
// nil FieldError when the value is acceptable, and an error when path is
// unknown or value has the wrong type.
func (v *Validator) ValidateField(path string, value any) (*apperrors.FieldError, error) {
	spec, err := models.CheckFieldValue(path, value)
	if err != nil {
		return nil, err
	}

	violation, err := v.rules.Var(value, spec.Rule)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	if violation == nil {
		return nil, nil
	}

	fe := fieldError(spec, violation.Tag, violation.Param)
	return &fe, nil
}

// ValidateAll validates the whole draft and returns every violation in form
// order, or nil when the draft can be submitted.
func (v *Validator) ValidateAll(draft models.Registration) apperrors.ValidationErrors {
	violations, err := v.rules.Struct(draft)
	if err != nil {
		// Only reachable if the model stops being a struct.
		return apperrors.ValidationErrors{{
			Field:   "",
			Reason:  apperrors.ReasonInvalid,
			Message: err.Error(),
		}}
	}

	errs := make(apperrors.ValidationErrors, 0, len(violations))
	for _, violation := range violations {
		spec, ok := models.LookupField(violation.Path)
		if !ok {
			errs = append(errs, apperrors.FieldError{
				Field:   violation.Path,
				Reason:  apperrors.ReasonInvalid,
				Message: validation.FormatMessage(violation.Path, violation.Tag, violation.Param),
			})
			continue
		}
		errs = append(errs, fieldError(spec, violation.Tag, violation.Param))
	}

	if v.uniqueMembers {
		errs = append(errs, duplicateMembers(draft, errs)...)
		slices.SortStableFunc(errs, func(a, b apperrors.FieldError) int {
			return v.order[a.Field] - v.order[b.Field]
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func fieldError(spec models.FieldSpec, tag, param string) apperrors.FieldError {
	message := spec.Message
	if message == "" {
		message = validation.FormatMessage(spec.Label, tag, param)
	}
	return apperrors.FieldError{
		Field:   spec.Path,
		Reason:  reasonFor(tag),
		Message: message,
	}
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return apperrors.ReasonRequired
	case "min":
		return apperrors.ReasonTooShort
	case "email":
		return apperrors.ReasonInvalidEmail
	case "oneof":
		return apperrors.ReasonInvalidChoice
	case "eq":
		return apperrors.ReasonMustAccept
	default:
		return apperrors.ReasonInvalid
	}
}

// duplicateMembers reports member emails and registration numbers already
// used by the leader or an earlier member. Fields that already failed a rule
// are left alone.
func duplicateMembers(draft models.Registration, existing apperrors.ValidationErrors) []apperrors.FieldError {
	var dups []apperrors.FieldError

	seenEmails := map[string]bool{}
	seenRegs := map[string]bool{}
	remember := func(seen map[string]bool, value string) {
		if key := normalize(value); key != "" {
			seen[key] = true
		}
	}
	remember(seenEmails, draft.LeaderEmail)
	remember(seenRegs, draft.LeaderRegNumber)

	for i, member := range draft.Members() {
		prefix := fmt.Sprintf("member%d.", i+1)

		check := func(field, label, value string, seen map[string]bool) {
			path := prefix + field
			if _, failed := existing.Lookup(path); failed {
				return
			}
			key := normalize(value)
			if key == "" {
				return
			}
			if seen[key] {
				dups = append(dups, apperrors.FieldError{
					Field:   path,
					Reason:  apperrors.ReasonDuplicate,
					Message: label + " is already used by another team member.",
				})
				return
			}
			seen[key] = true
		}

		check("email", "Email", member.Email, seenEmails)
		check("regNumber", "Registration number", member.RegNumber, seenRegs)
	}

	return dups
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultValidator = NewValidator()

// ValidateField checks one value with the default rules.
func ValidateField(path string, value any) (*apperrors.FieldError, error) {
	return defaultValidator.ValidateField(path, value)
}

// ValidateAll validates a draft with the default rules.
func ValidateAll(draft models.Registration) apperrors.ValidationErrors {
	return defaultValidator.ValidateAll(draft)
}
