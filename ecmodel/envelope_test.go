package ecmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEnvelopeRejectsInvalidClass(t *testing.T) {
	require.Panics(t, func() {
		NewEnvelope("Bogus", "something broke", nil)
	})
}

func TestNewEnvelopeRejectsEmptyReason(t *testing.T) {
	require.Panics(t, func() {
		NewEnvelope("Validation", "", nil)
	})
}

func TestNewEnvelopeFillsDetails(t *testing.T) {
	env := NewEnvelope("Step1", "dropped", nil)
	require.NotNil(t, env.Details)
	require.Equal(t, "Step1", env.Error)
	require.Equal(t, "dropped", env.Reason)
}

func TestIsEnvelopeExactlyThreeKeys(t *testing.T) {
	valid := map[string]any{"error": "Validation", "reason": "bad taxonomy", "details": map[string]any{}}
	require.True(t, IsEnvelope(valid))

	tooMany := map[string]any{"error": "Validation", "reason": "bad taxonomy", "details": map[string]any{}, "extra": 1}
	require.False(t, IsEnvelope(tooMany))

	badClass := map[string]any{"error": "NotAClass", "reason": "bad taxonomy", "details": map[string]any{}}
	require.False(t, IsEnvelope(badClass))

	emptyReason := map[string]any{"error": "Validation", "reason": "", "details": map[string]any{}}
	require.False(t, IsEnvelope(emptyReason))
}

func TestTupleEqualAndClone(t *testing.T) {
	norm := func(s string) string { return s }
	a := Tuple{"region": "us", "env": "prod"}
	b := a.Clone()
	require.True(t, a.Equal(b, norm))

	b["env"] = "dev"
	require.False(t, a.Equal(b, norm))
	require.Equal(t, "prod", a["env"])
}
