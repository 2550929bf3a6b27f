package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanonicalJSONKeyOrder перестановка ключей входного объекта
// не меняет каноническую форму.
func TestCanonicalJSONKeyOrder(t *testing.T) {
	a := json.RawMessage(`{"b": 2, "a": 1, "c": {"y": true, "x": null}}`)
	b := json.RawMessage(`{"c": {"x": null, "y": true}, "a": 1, "b": 2}`)

	var va, vb any
	require.NoError(t, json.Unmarshal(a, &va))
	require.NoError(t, json.Unmarshal(b, &vb))

	ca, err := CanonicalJSON(va)
	require.NoError(t, err)
	cb, err := CanonicalJSON(vb)
	require.NoError(t, err)

	assert.Equal(t, string(ca), string(cb))
}

// TestInputHashDeterministic одинаковый вход даёт одинаковый fingerprint.
func TestInputHashDeterministic(t *testing.T) {
	tz := "Europe/Paris"
	birthTime := "14:30"
	input := BirthInput{
		BirthDate:     "1973-07-15",
		BirthTime:     &birthTime,
		BirthPlace:    "Paris",
		BirthTimezone: &tz,
	}

	h1, err := InputHash(input, "1.0.0", "2.3.0")
	require.NoError(t, err)
	h2, err := InputHash(input, "1.0.0", "2.3.0")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

// TestInputHashSensitivity смена версий или входа меняет fingerprint.
func TestInputHashSensitivity(t *testing.T) {
	input := BirthInput{BirthDate: "1990-01-01", BirthPlace: "Moscow"}

	base, err := InputHash(input, "1.0.0", "2.3.0")
	require.NoError(t, err)

	otherRef, err := InputHash(input, "1.1.0", "2.3.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRef)

	otherRuleset, err := InputHash(input, "1.0.0", "2.4.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRuleset)

	other := input
	other.BirthPlace = "Kazan"
	otherInput, err := InputHash(other, "1.0.0", "2.3.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherInput)
}

// TestInputHashNilVsZeroTime отсутствующее время и явная полночь
// дают разные fingerprint: это разные birth-профили.
func TestInputHashNilVsZeroTime(t *testing.T) {
	midnight := "00:00"
	withTime := BirthInput{BirthDate: "1990-01-01", BirthPlace: "Moscow", BirthTime: &midnight}
	withoutTime := BirthInput{BirthDate: "1990-01-01", BirthPlace: "Moscow"}

	h1, err := InputHash(withTime, "1.0.0", "2.3.0")
	require.NoError(t, err)
	h2, err := InputHash(withoutTime, "1.0.0", "2.3.0")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
