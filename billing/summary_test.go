package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentdesk/billing"
)

func TestSummarize(t *testing.T) {
	now := date(2024, time.March, 15)

	payments := []billing.PaymentLine{
		{Amount: 1000, Status: billing.StatusPaid, DueDate: date(2024, time.January, 1)},
		{Amount: 1000, Status: billing.StatusPartial, DueDate: date(2024, time.February, 1)},
		{Amount: 1000, Status: billing.StatusPending, DueDate: date(2024, time.March, 1)},  // overdue
		{Amount: 1000, Status: billing.StatusPending, DueDate: date(2024, time.April, 1)},  // not yet due
		{Amount: 500, Status: billing.StatusCancelled, DueDate: date(2024, time.January, 1)},
		{Amount: 250, Status: billing.StatusRefunded, DueDate: date(2024, time.January, 1)},
	}

	s := billing.Summarize(payments, now)

	assert.Equal(t, 2000.0, s.TotalCollected)
	assert.Equal(t, 2000.0, s.PendingAmount)
	assert.Equal(t, 1000.0, s.OverdueAmount)
	assert.Equal(t, 250.0, s.RefundedAmount)
	assert.Equal(t, 2, s.PaidCount)
	assert.Equal(t, 2, s.PendingCount)
	assert.Equal(t, 1, s.OverdueCount)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	now := date(2024, time.March, 15)

	payments := []billing.PaymentLine{
		{Amount: 1200, Status: billing.StatusPaid, DueDate: date(2024, time.January, 1)},
		{Amount: 1200, Status: billing.StatusPending, DueDate: date(2024, time.February, 1)},
		{Amount: 1200, Status: billing.StatusPending, DueDate: date(2024, time.June, 1)},
	}

	first := billing.Summarize(payments, now)
	second := billing.Summarize(payments, now)

	assert.Equal(t, first, second)
}

func TestSummarizeEmpty(t *testing.T) {
	s := billing.Summarize(nil, time.Now())
	assert.Equal(t, billing.Summary{}, s)
}

func TestOccupancyRate(t *testing.T) {
	assert.Equal(t, 0.0, billing.OccupancyRate(0, 0))
	assert.Equal(t, 0.0, billing.OccupancyRate(0, 10))
	assert.Equal(t, 0.75, billing.OccupancyRate(3, 4))
	assert.Equal(t, 1.0, billing.OccupancyRate(5, 5))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-02", billing.MonthKey(date(2024, time.February, 29)))
}
