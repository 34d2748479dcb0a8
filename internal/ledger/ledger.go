// Package ledger derives reporting views from raw replica data: the
// per-student month-by-month fee ledger, the daily collection register, the
// income/expense summary, and the seat occupancy map.
//
// Everything here is a pure function of its inputs. Nothing is cached; the
// views are cheap to recompute and always reflect the current replica.
package ledger

import (
	"fmt"
	"time"

	"github.com/gurukul/gdl/internal/model"
)

// StatusKind classifies a ledger month bucket.
type StatusKind int

const (
	// StatusPending means no payment has reached this month yet.
	StatusPending StatusKind = iota
	// StatusPartial means the payment pool covered part of this month's fee.
	StatusPartial
	// StatusPaid means this month's fee is fully covered.
	StatusPaid
)

// MonthStatus is the payment state of one ledger month. Remainder is only
// meaningful for StatusPartial, where it holds the amount that was applied.
type MonthStatus struct {
	Kind      StatusKind
	Remainder model.Rupees
}

// Paid returns a fully-covered status.
func Paid() MonthStatus { return MonthStatus{Kind: StatusPaid} }

// Partial returns a partially-covered status with the applied amount.
func Partial(applied model.Rupees) MonthStatus {
	return MonthStatus{Kind: StatusPartial, Remainder: applied}
}

// Pending returns an uncovered status.
func Pending() MonthStatus { return MonthStatus{Kind: StatusPending} }

// String renders the status in the sheet's display vocabulary.
func (m MonthStatus) String() string {
	switch m.Kind {
	case StatusPaid:
		return "Paid"
	case StatusPartial:
		return fmt.Sprintf("Part(%d)", m.Remainder)
	default:
		return "Pending"
	}
}

// Month is one fee bucket in a student's ledger.
type Month struct {
	Name   string
	Fee    model.Rupees
	Status MonthStatus
}

// Ledger is the derived fee position of one student.
// Balance is TotalPaid - TotalDue: negative means due, zero or positive
// means clear or in advance.
type Ledger struct {
	TotalDue  model.Rupees
	TotalPaid model.Rupees
	Balance   model.Rupees
	Months    []Month
}

// Calculate computes a student's ledger from the full payment log.
//
// One bucket is generated for every calendar month from the student's join
// month through today's month, inclusive, each carrying the student's
// current monthly fee. Fee changes do not retroactively alter past buckets;
// that simplification is part of the ledger's contract, not an oversight.
//
// The total paid pool is consumed greedily against buckets in chronological
// order. A zero fee trivially marks every bucket Paid. A join date in the
// future yields no buckets and zero due. A missing or unparseable join date
// counts from the current month, matching how the sheet has always treated
// blank join cells.
func Calculate(student model.Student, allPayments []model.Payment, today time.Time) Ledger {
	fee := student.MonthlyFee

	join, ok := model.ParseDate(student.JoinDate)
	if !ok {
		join = today
	}

	var months []Month
	var totalDue model.Rupees
	current := time.Date(join.Year(), join.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	for !current.After(end) {
		months = append(months, Month{
			Name:   model.MonthLabel(current),
			Fee:    fee,
			Status: Pending(),
		})
		totalDue += fee
		current = current.AddDate(0, 1, 0)
	}

	var totalPaid model.Rupees
	for _, p := range allPayments {
		if p.StudentID == student.ID {
			totalPaid += p.Amount
		}
	}

	remaining := totalPaid
	for i := range months {
		switch {
		case remaining >= months[i].Fee:
			months[i].Status = Paid()
			remaining -= months[i].Fee
		case remaining > 0:
			months[i].Status = Partial(remaining)
			remaining = 0
		}
	}

	return Ledger{
		TotalDue:  totalDue,
		TotalPaid: totalPaid,
		Balance:   totalPaid - totalDue,
		Months:    months,
	}
}

// ReminderMessage builds the fee-status text shared with a student over
// messaging apps.
func ReminderMessage(student model.Student, l Ledger) string {
	return fmt.Sprintf(
		"*GURUKUL LIBRARY*\nHi %s,\nFee Status:\nPaid: ₹%d\nBalance: ₹%d\nPlease clear dues.",
		student.Name, l.TotalPaid, l.Balance,
	)
}
