package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Email string `json:"email" validate:"required,email"`
}

type outer struct {
	Name    string `json:"name" validate:"required,min=2"`
	Contact inner  `json:"contact"`
	Agreed  bool   `json:"agreed" validate:"eq=true"`
}

func TestStructReportsEveryViolationByJSONPath(t *testing.T) {
	v := New()

	violations, err := v.Struct(outer{Name: "A", Contact: inner{Email: "bad"}})
	require.NoError(t, err)
	require.Len(t, violations, 3)

	assert.Equal(t, Violation{Path: "name", Tag: "min", Param: "2"}, violations[0])
	assert.Equal(t, Violation{Path: "contact.email", Tag: "email"}, violations[1])
	assert.Equal(t, Violation{Path: "agreed", Tag: "eq", Param: "true"}, violations[2])
}

func TestStructValid(t *testing.T) {
	violations, err := New().Struct(outer{Name: "Ann", Contact: inner{Email: "ann@example.com"}, Agreed: true})
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestVar(t *testing.T) {
	v := New()

	violation, err := v.Var("", "required,min=2")
	require.NoError(t, err)
	require.NotNil(t, violation)
	assert.Equal(t, "required", violation.Tag)

	violation, err = v.Var("ab", "required,min=2")
	require.NoError(t, err)
	assert.Nil(t, violation)

	violation, err = v.Var("9", "required,oneof=1 2 3")
	require.NoError(t, err)
	require.NotNil(t, violation)
	assert.Equal(t, "oneof", violation.Tag)

	violation, err = v.Var(false, "eq=true")
	require.NoError(t, err)
	require.NotNil(t, violation)
	assert.Equal(t, "eq", violation.Tag)
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "email must be a valid email address", FormatMessage("email", "email", ""))
	assert.Equal(t, "name must be at least 2 characters", FormatMessage("name", "min", "2"))
	assert.Equal(t, "x validation failed: iso3166", FormatMessage("x", "iso3166", ""))
}
