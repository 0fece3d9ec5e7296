// Package billing holds the pure business rules for the rent ledger: schedule
// generation on contract activation, derived payment status, and the KPI
// aggregates the dashboard and reports are built from. Nothing in this package
// touches the database.
package billing

import "time"

// Payment types and statuses mirror the database constants. They are repeated
// here so the package stays free of imports and usable from tests without a
// database.
const (
	TypeRent    = "rent"
	TypeDeposit = "deposit"

	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusPartial   = "partial"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusOverdue   = "overdue"
)

// ScheduleContract carries the contract fields schedule generation needs
type ScheduleContract struct {
	MonthlyRent     float64
	SecurityDeposit float64
	StartDate       time.Time
	EndDate         time.Time
}

// ScheduledPayment is one generated ledger line
type ScheduledPayment struct {
	Type        string
	Amount      float64
	DueDate     time.Time
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// GenerateSchedule produces the initial payment ledger for an activated
// contract: one deposit line if a security deposit is owed, then one rent line
// per calendar month from the start date up to today, capped at the contract
// end. A contract starting in the future yields no rent lines; a contract that
// starts and ends inside one month yields exactly one.
//
// Period ends use AddDate month arithmetic, so a period starting on a
// month-end day overflows forward (Jan 31 + 1 month = Mar 2/3) rather than
// clamping.
func GenerateSchedule(c ScheduleContract, today time.Time) []ScheduledPayment {
	var payments []ScheduledPayment

	if c.SecurityDeposit > 0 {
		payments = append(payments, ScheduledPayment{
			Type:    TypeDeposit,
			Amount:  c.SecurityDeposit,
			DueDate: c.StartDate,
		})
	}

	for period := c.StartDate; !period.After(today) && period.Before(c.EndDate); period = period.AddDate(0, 1, 0) {
		start := period
		end := period.AddDate(0, 1, 0).AddDate(0, 0, -1)
		payments = append(payments, ScheduledPayment{
			Type:        TypeRent,
			Amount:      c.MonthlyRent,
			DueDate:     start,
			PeriodStart: &start,
			PeriodEnd:   &end,
		})
	}

	return payments
}

// DeriveStatus returns the effective status of a payment: "overdue" for a
// pending payment whose due date is strictly in the past, the stored status
// otherwise. This is the single implementation every view of payment status
// goes through.
func DeriveStatus(stored string, dueDate, now time.Time) string {
	if stored == StatusPending && dueDate.Before(now) {
		return StatusOverdue
	}
	return stored
}

// IsOverdue reports whether a payment is pending and past due
func IsOverdue(stored string, dueDate, now time.Time) bool {
	return DeriveStatus(stored, dueDate, now) == StatusOverdue
}

// ContractExpired reports whether a contract's end date has passed
func ContractExpired(endDate, now time.Time) bool {
	return !endDate.After(now)
}
