package billing

import "time"

// PaymentLine is the projection of a payment row the aggregates work on
type PaymentLine struct {
	Amount  float64
	Status  string
	Type    string
	DueDate time.Time
}

// Summary holds the KPI totals derived from a set of payments
type Summary struct {
	TotalCollected float64 `json:"total_collected"`
	PendingAmount  float64 `json:"pending_amount"`
	OverdueAmount  float64 `json:"overdue_amount"`
	RefundedAmount float64 `json:"refunded_amount"`
	PaidCount      int     `json:"paid_count"`
	PendingCount   int     `json:"pending_count"`
	OverdueCount   int     `json:"overdue_count"`
}

// Summarize computes payment KPI totals. Overdue lines are counted in both
// the pending and overdue buckets, matching how the ledger screens read:
// overdue is a subset of pending, not a third pile of money.
func Summarize(payments []PaymentLine, now time.Time) Summary {
	var s Summary
	for _, p := range payments {
		switch DeriveStatus(p.Status, p.DueDate, now) {
		case StatusPaid, StatusPartial:
			s.TotalCollected += p.Amount
			s.PaidCount++
		case StatusOverdue:
			s.PendingAmount += p.Amount
			s.PendingCount++
			s.OverdueAmount += p.Amount
			s.OverdueCount++
		case StatusPending:
			s.PendingAmount += p.Amount
			s.PendingCount++
		case StatusRefunded:
			s.RefundedAmount += p.Amount
		}
	}
	return s
}

// OccupancyRate returns rented/total, 0 for an empty portfolio
func OccupancyRate(rented, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(rented) / float64(total)
}

// MonthKey formats a date as the YYYY-MM bucket used by the revenue report
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
