package model

import (
	"encoding/json"
	"fmt"
)

// Action tags a mutation or query sent to the remote endpoint.
type Action string

// The full action vocabulary of the endpoint. Every request is a POST of
// {action, data}; responses are JSON with a status field.
const (
	ActionLogin         Action = "login"
	ActionSyncData      Action = "sync_data"
	ActionAddPayment    Action = "add_payment"
	ActionNewAdmission  Action = "new_admission"
	ActionEditStudent   Action = "edit_student"
	ActionDeleteStudent Action = "delete_student"
	ActionAddExpense    Action = "add_expense"
)

// Envelope is a single queued mutation intent awaiting remote confirmation.
// Data holds the action payload verbatim; the queue never interprets it
// except for the collectedBy stamping rule at transmit time.
type Envelope struct {
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// NewEnvelope marshals payload and wraps it with the action tag.
func NewEnvelope(action Action, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("envelope %s: %w", action, err)
	}
	return Envelope{Action: action, Data: data}, nil
}

// PaymentTimestamp extracts the client timestamp from an add_payment
// envelope. Returns 0 if the payload has no usable timestamp.
func (e Envelope) PaymentTimestamp() int64 {
	var probe struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(e.Data, &probe); err != nil {
		return 0
	}
	return probe.Timestamp
}

// StudentID extracts the student identifier from a student-mutating
// envelope (new_admission, edit_student, delete_student). Returns "" for
// other actions or malformed payloads.
func (e Envelope) StudentID() string {
	switch e.Action {
	case ActionNewAdmission, ActionEditStudent, ActionDeleteStudent:
	default:
		return ""
	}
	var probe struct {
		ID FlexString `json:"id"`
	}
	if err := json.Unmarshal(e.Data, &probe); err != nil {
		return ""
	}
	return string(probe.ID)
}

// StampCollectedBy returns a copy of an add_payment envelope with collectedBy
// set to name, if the payload does not already carry one. All other
// envelopes are returned unchanged. Stamping happens immediately before
// transmission, not at enqueue time, because the acting user may have
// changed since the payment was recorded.
func (e Envelope) StampCollectedBy(name string) (Envelope, error) {
	if e.Action != ActionAddPayment {
		return e, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return e, fmt.Errorf("stamp collectedBy: %w", err)
	}
	if v, ok := payload["collectedBy"].(string); ok && v != "" {
		return e, nil
	}
	payload["collectedBy"] = name
	data, err := json.Marshal(payload)
	if err != nil {
		return e, fmt.Errorf("stamp collectedBy: %w", err)
	}
	return Envelope{Action: e.Action, Data: data}, nil
}
