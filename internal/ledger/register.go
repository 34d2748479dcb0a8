package ledger

import (
	"sort"
	"time"

	"github.com/gurukul/gdl/internal/model"
)

// RegisterDay groups one calendar day's collections, newest payment first.
type RegisterDay struct {
	Date     string // display form, DD/MM/YYYY
	Payments []model.Payment
}

// Register is the daily collection view.
type Register struct {
	TodayTotal   model.Rupees
	Transactions int
	Days         []RegisterDay
}

// DailyRegister builds the collection register from the payment log:
// today's total, the overall transaction count, and payments grouped by day
// in reverse chronological order.
func DailyRegister(payments []model.Payment, today time.Time) Register {
	sorted := make([]model.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := model.ParseDate(sorted[i].Date)
		dj, _ := model.ParseDate(sorted[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	reg := Register{Transactions: len(payments)}
	todayISO := model.FormatISO(today)

	index := make(map[string]int)
	for _, p := range sorted {
		if d, ok := model.ParseDate(p.Date); ok && model.FormatISO(d) == todayISO {
			reg.TodayTotal += p.Amount
		}
		key := model.FormatDisplay(p.Date)
		i, seen := index[key]
		if !seen {
			i = len(reg.Days)
			index[key] = i
			reg.Days = append(reg.Days, RegisterDay{Date: key})
		}
		reg.Days[i].Payments = append(reg.Days[i].Payments, p)
	}
	return reg
}

// FinanceSummary totals income against expenses.
type FinanceSummary struct {
	Income  model.Rupees
	Expense model.Rupees
	Net     model.Rupees
}

// Finances computes the income/expense summary from the raw logs.
func Finances(payments []model.Payment, expenses []model.Expense) FinanceSummary {
	var sum FinanceSummary
	for _, p := range payments {
		sum.Income += p.Amount
	}
	for _, e := range expenses {
		sum.Expense += e.Amount
	}
	sum.Net = sum.Income - sum.Expense
	return sum
}

// ExpensesByDateDesc returns expenses sorted newest first for display.
func ExpensesByDateDesc(expenses []model.Expense) []model.Expense {
	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, _ := model.ParseDate(sorted[i].Date)
		dj, _ := model.ParseDate(sorted[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}
