// Package progress derives budget status and goal progress figures from
// stored amounts. It performs no I/O; callers supply the transaction sums.
package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Budget status labels.
const (
	StatusOverBudget       = "Over Budget"
	StatusBudgetExhausted  = "Budget Exhausted"
	StatusAlmostThere      = "Almost There"
	StatusOnTrack          = "On Track"
	StatusBuildingMomentum = "Building Momentum"
	StatusGettingStarted   = "Getting Started"
	StatusFreshStart       = "Fresh Start"
)

// UI colors shared by budget and goal views.
const (
	ColorError   = "error"
	ColorWarning = "warning"
	ColorSuccess = "success"
	ColorInfo    = "info"
	ColorDefault = "default"
)

// BudgetResult is the derived state of a budget for the current month.
type BudgetResult struct {
	Remaining      decimal.Decimal
	PercentageUsed int
	Status         string
	Color          string
}

// Budget computes remaining amount, whole percentage used and the status
// label for an allocation. Over-spending is checked before the percentage
// buckets.
func Budget(allocated, spent decimal.Decimal) BudgetResult {
	pct := Percentage(spent, allocated)
	status, color := budgetStatus(allocated, spent, pct)
	return BudgetResult{
		Remaining:      allocated.Sub(spent),
		PercentageUsed: pct,
		Status:         status,
		Color:          color,
	}
}

func budgetStatus(allocated, spent decimal.Decimal, pct int) (string, string) {
	switch {
	case spent.GreaterThan(allocated):
		return StatusOverBudget, ColorError
	case pct >= 100:
		return StatusBudgetExhausted, ColorError
	case pct >= 80:
		return StatusAlmostThere, ColorWarning
	case pct >= 40:
		return StatusOnTrack, ColorSuccess
	case pct >= 20:
		return StatusBuildingMomentum, ColorInfo
	case pct >= 10:
		return StatusGettingStarted, ColorInfo
	default:
		return StatusFreshStart, ColorInfo
	}
}

// Percentage returns floor(part / whole * 100), or 0 when whole is not positive.
// Negative results are reported as 0.
func Percentage(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	pct := part.Mul(hundred).Div(whole).Floor().IntPart()
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// GoalResult is the derived progress of a savings goal.
type GoalResult struct {
	// Total is opening balance plus contributions, before clamping.
	Total         decimal.Decimal
	Current       decimal.Decimal
	Remaining     decimal.Decimal
	Percentage    int
	DaysRemaining int
	IsOverdue     bool
}

// Goal combines the goal's opening amount with contributions since its start
// date. Current never exceeds target and Percentage stays within [0, 100].
func Goal(target, opening, contributed decimal.Decimal, endDate *time.Time, today time.Time) GoalResult {
	total := opening.Add(contributed)
	current := decimal.Min(total, target)
	if current.IsNegative() {
		current = decimal.Zero
	}

	pct := Percentage(current, target)
	if pct > 100 {
		pct = 100
	}

	res := GoalResult{
		Total:      total,
		Current:    current,
		Remaining:  target.Sub(current),
		Percentage: pct,
	}
	if endDate != nil {
		res.DaysRemaining = DaysBetween(today, *endDate)
		res.IsOverdue = res.DaysRemaining < 0
	}
	return res
}

// DaysBetween counts calendar days from one date to another in UTC,
// ignoring the time of day.
func DaysBetween(from, to time.Time) int {
	f := Day(from)
	t := Day(to)
	return int(t.Sub(f).Hours() / 24)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StatusColor maps a goal status to its UI color.
func StatusColor(status string) string {
	switch status {
	case "Active":
		return ColorSuccess
	case "Paused":
		return ColorWarning
	case "Completed":
		return ColorInfo
	case "Cancelled":
		return ColorError
	}
	return ColorDefault
}

// PriorityColor maps a goal priority to its UI color.
func PriorityColor(priority string) string {
	switch priority {
	case "Low":
		return ColorSuccess
	case "Medium":
		return ColorWarning
	case "High":
		return ColorError
	}
	return ColorDefault
}

// MonthStart returns the first day of now's month at midnight UTC.
func MonthStart(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthToDate returns the half-open window [first of month, now + 1 day)
// used for every month-to-date spend query.
func MonthToDate(now time.Time) (time.Time, time.Time) {
	return MonthStart(now), now.UTC().AddDate(0, 0, 1)
}

// PreviousMonthEnd returns the last day of the month before now's month.
func PreviousMonthEnd(now time.Time) time.Time {
	return MonthStart(now).AddDate(0, 0, -1)
}

// SameMonth reports whether a and b fall in the same calendar month in UTC.
func SameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// SpendingScore rates spending against the total budget on a 0..100 scale.
// With no budget the score is 100.
func SpendingScore(totalBudget, totalSpent decimal.Decimal) int {
	if !totalBudget.IsPositive() {
		return 100
	}
	score := totalBudget.Sub(totalSpent).Mul(hundred).Div(totalBudget).Floor().IntPart()
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}
