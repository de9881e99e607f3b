package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Status   string `json:"status" validate:"omitempty,oneof=scheduled completed"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&signup{Name: "Asha", Email: "asha@example.com", Password: "secret"}))

	err := v.Validate(&signup{Email: "asha@example.com", Password: "abc", Status: "unknown"})
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok)
	assert.True(t, verr.Has("name", "required"))
	assert.True(t, verr.Has("password", "min"))
	assert.True(t, verr.Has("status", "oneof"))
	assert.False(t, verr.Has("email", "required"))
	assert.Contains(t, verr.Error(), "password must be at least 6 characters long")
	assert.Contains(t, verr.Error(), "name is required")
}

func TestValidatePasswordLengthCountsCharacters(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signup{Name: "Asha", Email: "a@b.c", Password: "पासवर्ड१"}))
}
