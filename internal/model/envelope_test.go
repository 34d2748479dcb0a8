package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(ActionDeleteStudent, map[string]string{"id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, ActionDeleteStudent, env.Action)
	assert.JSONEq(t, `{"id":"s1"}`, string(env.Data))
}

func TestEnvelope_PaymentTimestamp(t *testing.T) {
	env, err := NewEnvelope(ActionAddPayment, Payment{Timestamp: 1710000000000})
	require.NoError(t, err)
	assert.Equal(t, int64(1710000000000), env.PaymentTimestamp())

	assert.Zero(t, Envelope{Action: ActionAddPayment, Data: []byte(`{}`)}.PaymentTimestamp())
}

func TestEnvelope_StudentID(t *testing.T) {
	edit, err := NewEnvelope(ActionEditStudent, map[string]string{"id": "s9"})
	require.NoError(t, err)
	assert.Equal(t, "s9", edit.StudentID())

	// Non-student actions report no id even when the payload has one.
	pay, err := NewEnvelope(ActionAddPayment, map[string]string{"id": "s9"})
	require.NoError(t, err)
	assert.Empty(t, pay.StudentID())

	// Sheet-echoed numeric ids still resolve.
	del := Envelope{Action: ActionDeleteStudent, Data: []byte(`{"id":1700000000000}`)}
	assert.Equal(t, "1700000000000", del.StudentID())
}

func TestEnvelope_StampCollectedBy(t *testing.T) {
	env, err := NewEnvelope(ActionAddPayment, map[string]any{"amount": 500})
	require.NoError(t, err)

	stamped, err := env.StampCollectedBy("Amit")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(stamped.Data, &payload))
	assert.Equal(t, "Amit", payload["collectedBy"])

	// Original envelope is untouched.
	payload = map[string]any{}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.NotContains(t, payload, "collectedBy")
}

func TestEnvelope_StampCollectedBy_PreservesExisting(t *testing.T) {
	env, err := NewEnvelope(ActionAddPayment, map[string]any{"collectedBy": "Priya"})
	require.NoError(t, err)

	stamped, err := env.StampCollectedBy("Amit")
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(stamped.Data, &payload))
	assert.Equal(t, "Priya", payload["collectedBy"])
}

func TestEnvelope_StampCollectedBy_IgnoresOtherActions(t *testing.T) {
	env, err := NewEnvelope(ActionAddExpense, map[string]any{"item": "Broom"})
	require.NoError(t, err)

	stamped, err := env.StampCollectedBy("Amit")
	require.NoError(t, err)
	assert.Equal(t, env, stamped)
}

func TestFingerprint_StableAcrossKeyOrder(t *testing.T) {
	a := Envelope{Action: ActionAddExpense, Data: []byte(`{"item":"Broom","amount":120}`)}
	b := Envelope{Action: ActionAddExpense, Data: []byte(`{"amount":120,"item":"Broom"}`)}

	fpA, err := Fingerprint(a)
	require.NoError(t, err)
	fpB, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)
}

func TestFingerprint_DiffersByPayload(t *testing.T) {
	a := MustFingerprint(Envelope{Action: ActionAddExpense, Data: []byte(`{"amount":120}`)})
	b := MustFingerprint(Envelope{Action: ActionAddExpense, Data: []byte(`{"amount":121}`)})
	assert.NotEqual(t, a, b)
}

func TestFingerprint_DiffersByAction(t *testing.T) {
	a := MustFingerprint(Envelope{Action: ActionAddExpense, Data: []byte(`{"id":"x"}`)})
	b := MustFingerprint(Envelope{Action: ActionDeleteStudent, Data: []byte(`{"id":"x"}`)})
	assert.NotEqual(t, a, b)
}
