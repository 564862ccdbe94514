package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"

	// Booking.refund_status tracks where the booking sits in the refund
	// flow and starts at none; requested means a cancellation or refund
	// request flagged it. A RefundRequest row has its own lifecycle and
	// starts at pending.
	RefundNone      = "none"
	RefundRequested = "requested"
	RefundPending   = "pending"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
	RefundProcessed = "processed"
)

// bookingTransitions is the only authority on legal booking status moves.
// Cancelled and completed are terminal.
var bookingTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// refundTransitions: approval is a policy decision, processing moves money;
// a request must pass through approved before it can be processed.
var refundTransitions = map[string][]string{
	RefundPending:   {RefundApproved, RefundRejected},
	RefundApproved:  {RefundProcessed},
	RefundRejected:  {},
	RefundProcessed: {},
}

func CanTransitionBooking(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func CanTransitionRefund(from, to string) bool {
	for _, allowed := range refundTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	StudentProfileID  uuid.UUID       `db:"student_profile_id" json:"student_profile_id"`
	TransportOptionID uuid.UUID       `db:"transport_option_id" json:"transport_option_id"`
	BookingDate       time.Time       `db:"booking_date" json:"booking_date"`
	SeatsBooked       int             `db:"seats_booked" json:"seats_booked"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	PlatformFee       decimal.Decimal `db:"platform_fee" json:"platform_fee"`
	OrganizerAmount   decimal.Decimal `db:"organizer_amount" json:"organizer_amount"`
	BookingStatus     string          `db:"booking_status" json:"booking_status"`
	PaymentStatus     string          `db:"payment_status" json:"payment_status"`
	PaymentMethod     string          `db:"payment_method" json:"payment_method"`
	RefundAmount      decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	RefundStatus      string          `db:"refund_status" json:"refund_status"`
	RefundReason      *string         `db:"refund_reason" json:"refund_reason,omitempty"`
	SpecialRequests   *string         `db:"special_requests" json:"special_requests,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type RefundRequest struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BookingID        uuid.UUID       `db:"booking_id" json:"booking_id"`
	StudentProfileID uuid.UUID       `db:"student_profile_id" json:"student_profile_id"`
	OrganizerID      uuid.UUID       `db:"organizer_id" json:"organizer_id"`
	RefundAmount     decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	Reason           string          `db:"reason" json:"reason"`
	Status           string          `db:"status" json:"status"`
	AdminNotes       *string         `db:"admin_notes" json:"admin_notes,omitempty"`
	ProcessedBy      *uuid.UUID      `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt      *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// Amounts is the fee split for a booking.
type Amounts struct {
	Total           decimal.Decimal
	PlatformFee     decimal.Decimal
	OrganizerAmount decimal.Decimal
}

// ComputeAmounts derives the fee split from the route price and seat count.
// It is invoked unconditionally at booking creation; amounts are immutable
// afterwards, so platform_fee + organizer_amount always equals total_amount.
func ComputeAmounts(price decimal.Decimal, seats int, feePercent decimal.Decimal) Amounts {
	total := price.Mul(decimal.NewFromInt(int64(seats)))
	fee := total.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	return Amounts{
		Total:           total,
		PlatformFee:     fee,
		OrganizerAmount: total.Sub(fee),
	}
}

type CreateBookingRequest struct {
	TransportOptionID uuid.UUID `json:"transport_option_id" binding:"required"`
	BookingDate       string    `json:"booking_date" binding:"required"`
	SeatsBooked       int       `json:"seats_booked" binding:"required,min=1"`
	PaymentMethod     string    `json:"payment_method" binding:"required,oneof=wallet mobile_money bank_transfer card"`
	SpecialRequests   *string   `json:"special_requests"`
}

type RefundRequestCreate struct {
	BookingID    uuid.UUID `json:"booking_id" binding:"required"`
	RefundAmount string    `json:"refund_amount" binding:"required"`
	Reason       string    `json:"reason" binding:"required"`
}

type RefundDecisionRequest struct {
	Decision   string  `json:"decision" binding:"required,oneof=approved rejected processed"`
	AdminNotes *string `json:"admin_notes"`
}

type BookingStats struct {
	TotalBookings     int             `db:"total_bookings" json:"total_bookings"`
	PendingBookings   int             `db:"pending_bookings" json:"pending_bookings"`
	ConfirmedBookings int             `db:"confirmed_bookings" json:"confirmed_bookings"`
	CompletedBookings int             `db:"completed_bookings" json:"completed_bookings"`
	CancelledBookings int             `db:"cancelled_bookings" json:"cancelled_bookings"`
	TotalSpent        decimal.Decimal `db:"total_spent" json:"total_spent"`
}
