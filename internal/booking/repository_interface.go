package booking

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByStudent(ctx context.Context, studentProfileID uuid.UUID) ([]Booking, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Booking, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*Booking, error)

	HasRefundRequest(ctx context.Context, bookingID uuid.UUID) (bool, error)
	CreateRefundRequest(ctx context.Context, rr *RefundRequest) (*RefundRequest, error)
	GetRefundRequestByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error)
	ListRefundRequests(ctx context.Context, filter, id string) ([]RefundRequest, error)
	DecideRefund(ctx context.Context, id uuid.UUID, decision string, adminNotes *string, decidedBy uuid.UUID) (*RefundRequest, error)
	ProcessRefund(ctx context.Context, id uuid.UUID, processedBy uuid.UUID) (*RefundRequest, error)

	GetStudentStats(ctx context.Context, studentProfileID uuid.UUID) (*BookingStats, error)
}
