package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBookingTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, CanTransitionBooking(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestRefundTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{RefundPending, RefundApproved, true},
		{RefundPending, RefundRejected, true},
		{RefundPending, RefundProcessed, false},
		// "requested" belongs to the booking's refund_status flag, not to
		// refund request rows.
		{RefundRequested, RefundApproved, false},
		{RefundRequested, RefundRejected, false},
		{RefundApproved, RefundProcessed, true},
		{RefundApproved, RefundRejected, false},
		{RefundRejected, RefundApproved, false},
		{RefundProcessed, RefundProcessed, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.allowed, CanTransitionRefund(c.from, c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestComputeAmounts(t *testing.T) {
	price := decimal.RequireFromString("500.00")

	amounts := ComputeAmounts(price, 2, decimal.NewFromInt(5))

	assert.True(t, amounts.Total.Equal(decimal.RequireFromString("1000.00")), "total %s", amounts.Total)
	assert.True(t, amounts.PlatformFee.Equal(decimal.RequireFromString("50.00")), "fee %s", amounts.PlatformFee)
	assert.True(t, amounts.OrganizerAmount.Equal(decimal.RequireFromString("950.00")), "organizer %s", amounts.OrganizerAmount)
}

func TestComputeAmountsSplitAlwaysSumsToTotal(t *testing.T) {
	// awkward price that does not divide evenly at 5%
	price := decimal.RequireFromString("333.33")
	feePercent := decimal.NewFromInt(5)

	for seats := 1; seats <= 7; seats++ {
		amounts := ComputeAmounts(price, seats, feePercent)
		sum := amounts.PlatformFee.Add(amounts.OrganizerAmount)
		assert.True(t, sum.Equal(amounts.Total),
			"seats=%d: fee %s + organizer %s != total %s", seats, amounts.PlatformFee, amounts.OrganizerAmount, amounts.Total)
	}
}

func TestComputeAmountsSingleSeat(t *testing.T) {
	amounts := ComputeAmounts(decimal.RequireFromString("150.00"), 1, decimal.NewFromInt(5))

	assert.True(t, amounts.Total.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, amounts.PlatformFee.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, amounts.OrganizerAmount.Equal(decimal.RequireFromString("142.50")))
}
