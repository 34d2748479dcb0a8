package model

import (
	"bytes"
	"encoding/json"
)

// TxnRef tracks whether a payment has been confirmed by the remote endpoint.
//
// A payment created offline is Pending until a later successful queue drain
// patches in the server-assigned transaction id. Consumers branch on the two
// states explicitly instead of comparing against a magic sentinel string.
type TxnRef struct {
	id string
}

// PendingTxn returns a reference awaiting remote confirmation.
func PendingTxn() TxnRef { return TxnRef{} }

// ConfirmedTxn returns a reference confirmed with the given transaction id.
func ConfirmedTxn(id string) TxnRef { return TxnRef{id: id} }

// Pending reports whether the remote has not yet assigned an id.
func (t TxnRef) Pending() bool { return t.id == "" }

// ID returns the remote transaction id and whether one has been assigned.
func (t TxnRef) ID() (string, bool) { return t.id, t.id != "" }

// String renders the id, or "pending" when unconfirmed.
func (t TxnRef) String() string {
	if t.id == "" {
		return "pending"
	}
	return t.id
}

// MarshalJSON encodes the id, or the empty string while pending. The wire
// and storage format stay plain strings for sheet compatibility.
func (t TxnRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.id)
}

// UnmarshalJSON decodes a transaction id. Empty strings, null, and the
// legacy placeholder values the sheet has accumulated all decode as pending.
func (t *TxnRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numeric txn ids appear in older sheet rows.
		var raw json.Number
		if nerr := json.Unmarshal(data, &raw); nerr != nil {
			return err
		}
		s = raw.String()
	}
	switch s {
	case "", "pending", "WAITING...":
		t.id = ""
	default:
		t.id = s
	}
	return nil
}
