package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Student status values. Students are never hard-deleted; removal flips the
// status to StatusLeft.
const (
	StatusActive = "Active"
	StatusLeft   = "Left"
)

// Gender values recognised by the endpoint.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Shift identifies which part of the day a student occupies their seat.
// Combination values ("Morning + Evening") are allowed; Slots reports the
// individual slots a shift covers.
type Shift string

// Canonical single-slot and full-day shifts.
const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
	ShiftNight   Shift = "Night"
	ShiftFullDay Shift = "Full Day"
)

// Slot is a single occupancy slot within a day.
type Slot string

// The three occupancy slots.
const (
	SlotMorning Slot = "M"
	SlotEvening Slot = "E"
	SlotNight   Slot = "N"
)

// Slots expands a shift into the day slots it occupies.
// A full-day shift covers all three slots; combination shifts cover each
// named slot.
func (s Shift) Slots() []Slot {
	if s == ShiftFullDay {
		return []Slot{SlotMorning, SlotEvening, SlotNight}
	}
	var slots []Slot
	str := string(s)
	if strings.Contains(str, "Morning") {
		slots = append(slots, SlotMorning)
	}
	if strings.Contains(str, "Evening") {
		slots = append(slots, SlotEvening)
	}
	if strings.Contains(str, "Night") {
		slots = append(slots, SlotNight)
	}
	return slots
}

// Rupees is an integer amount of money. The endpoint is loose about numeric
// typing (amounts arrive as numbers or numeric strings), so Rupees accepts
// both when decoding and always encodes as a JSON number.
type Rupees int64

// UnmarshalJSON accepts a JSON number, a numeric string, or null/empty
// (decoded as zero). Missing and malformed optional amounts must not abort a
// replica load, so garbage decodes to zero rather than erroring.
func (r *Rupees) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("rupees: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*r = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*r = 0
			return nil
		}
		*r = Rupees(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		// Sheets occasionally emit floats for integer cells.
		var f float64
		if ferr := json.Unmarshal(data, &f); ferr != nil {
			return fmt.Errorf("rupees: %w", err)
		}
		n = int64(f)
	}
	*r = Rupees(n)
	return nil
}

// FlexString is a string that tolerates JSON numbers on decode. Seat numbers
// are entered as text but echoed back by the sheet as numbers.
type FlexString string

// UnmarshalJSON decodes a JSON string or number into a string.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

// Student is a library member. Identity is ID, a client-generated
// time-ordered token assigned at admission. Typed FlexString because older
// rows used bare clock readings as ids and the sheet echoes those back as
// JSON numbers.
type Student struct {
	ID         FlexString `json:"id"`
	Name       string     `json:"name"`
	FatherName string     `json:"fatherName"`
	Contact    string     `json:"contact"`
	SeatNo     FlexString `json:"seatNo"`
	Shift      Shift      `json:"shift"`
	MonthlyFee Rupees     `json:"monthlyFee"`
	Gender     string     `json:"gender"`
	Address    string     `json:"address"`
	JoinDate   string     `json:"joinDate"`
	Status     string     `json:"status"`
}

// Active reports whether the student currently holds a seat.
func (s Student) Active() bool { return s.Status == StatusActive }

// Payment records money collected from a student.
//
// Identity for merge/dedup is the remote transaction id once assigned.
// Before the remote confirms, the payment is identified by Timestamp
// (client clock, unix milliseconds), which the engine uses to patch in the
// transaction id from the add_payment response.
type Payment struct {
	StudentID   FlexString `json:"studentId"`
	StudentName string     `json:"studentName"`
	Amount      Rupees     `json:"amount"`
	Month       string     `json:"month"`
	Date        string     `json:"date"`
	Timestamp   int64      `json:"timestamp"`
	Mode        string     `json:"mode"`
	CollectedBy string     `json:"collectedBy,omitempty"`
	Txn         TxnRef     `json:"txnId"`
}

// Expense is an operational cost entry. Immutable once created.
type Expense struct {
	ExpID     string `json:"expId"`
	Date      string `json:"date"`
	Item      string `json:"item"`
	Category  string `json:"category"`
	Amount    Rupees `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// User is the authenticated session user returned by the login action.
type User struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// RoleStaff is the restricted role; staff cannot view finances or remove
// students.
const RoleStaff = "Staff"

// Delta is the set of remote changes since a checkpoint, as returned by the
// sync_data action.
type Delta struct {
	Students []Student `json:"students"`
	Payments []Payment `json:"payments"`
	Expenses []Expense `json:"expenses"`
}

// Empty reports whether the delta carries no changes at all.
func (d Delta) Empty() bool {
	return len(d.Students) == 0 && len(d.Payments) == 0 && len(d.Expenses) == 0
}
