package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListEncodesNilAsEmptyArray(t *testing.T) {
	b, err := json.Marshal(TherapySchedule{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"precautions":[]`)

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`{"no cold water","rest after session"}`)))
	assert.Equal(t, StringList{"no cold water", "rest after session"}, l)
}

func TestPractitionerHidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(Practitioner{Name: "Asha", PasswordHash: "$2a$12$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}

func TestUpdatePatientRequestApply(t *testing.T) {
	p := &Patient{Name: "Ravi", Email: "ravi@example.com", Phone: "123", PrimaryDosha: "vata"}
	name := "Ravi Kumar"
	req := &UpdatePatientRequest{Name: &name}

	assert.False(t, req.Empty())
	req.Apply(p)

	assert.Equal(t, "Ravi Kumar", p.Name)
	assert.Equal(t, "ravi@example.com", p.Email)
	assert.Equal(t, "123", p.Phone)
	assert.Equal(t, "vata", p.PrimaryDosha)
	assert.True(t, (&UpdatePatientRequest{}).Empty())
}

func TestPractitionerTokenUsable(t *testing.T) {
	now := time.Now()
	tok := &PractitionerToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(time.Hour)))

	tok.UsedAt = &now
	assert.False(t, tok.Usable(now))
}
