package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/auth"
	"github.com/Trevolee01/Bui-transport/internal/logger"
	"github.com/Trevolee01/Bui-transport/internal/metrics"
	"github.com/Trevolee01/Bui-transport/internal/notification"
	"github.com/Trevolee01/Bui-transport/internal/transport"
	"github.com/Trevolee01/Bui-transport/internal/user"
)

type Service interface {
	CreateBooking(ctx context.Context, student *user.StudentProfile, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, actor user.Actor, id uuid.UUID) (*Booking, error)
	ListStudentBookings(ctx context.Context, student *user.StudentProfile) ([]Booking, error)
	ListOrganizerBookings(ctx context.Context, organizer *user.OrganizerProfile) ([]Booking, error)
	ConfirmBooking(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID) (*Booking, error)
	CompleteBooking(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID) (*Booking, error)
	CancelBooking(ctx context.Context, student *user.StudentProfile, id uuid.UUID) (*Booking, error)
	RequestRefund(ctx context.Context, student *user.StudentProfile, req RefundRequestCreate) (*RefundRequest, error)
	GetRefundRequest(ctx context.Context, actor user.Actor, id uuid.UUID) (*RefundRequest, error)
	ListRefundRequests(ctx context.Context, actor user.Actor) ([]RefundRequest, error)
	ProcessRefundDecision(ctx context.Context, adminUserID uuid.UUID, id uuid.UUID, req RefundDecisionRequest) (*RefundRequest, error)
	GetStudentStats(ctx context.Context, student *user.StudentProfile) (*BookingStats, error)
}

type service struct {
	repo          Repository
	transportRepo transport.Repository
	notifications *notification.Service
	feePercent    decimal.Decimal
}

func NewService(repo Repository, transportRepo transport.Repository, notifications *notification.Service, feePercent decimal.Decimal) Service {
	return &service{
		repo:          repo,
		transportRepo: transportRepo,
		notifications: notifications,
		feePercent:    feePercent,
	}
}

func (s *service) CreateBooking(ctx context.Context, student *user.StudentProfile, req CreateBookingRequest) (*Booking, error) {
	route, err := s.transportRepo.GetRouteByID(ctx, req.TransportOptionID)
	if err != nil {
		return nil, err
	}

	bookingDate, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	today := time.Now().Truncate(24 * time.Hour)
	if bookingDate.Before(today) {
		return nil, ErrDateInPast
	}

	if !route.IsOperatingOn(bookingDate) {
		return nil, ErrNotOperatingDay
	}

	if req.SeatsBooked < 1 {
		return nil, ErrInvalidSeatCount
	}

	amounts := ComputeAmounts(route.Price, req.SeatsBooked, s.feePercent)

	created, err := s.repo.CreateBooking(ctx, &Booking{
		StudentProfileID:  student.ID,
		TransportOptionID: route.ID,
		BookingDate:       bookingDate,
		SeatsBooked:       req.SeatsBooked,
		TotalAmount:       amounts.Total,
		PlatformFee:       amounts.PlatformFee,
		OrganizerAmount:   amounts.OrganizerAmount,
		PaymentMethod:     req.PaymentMethod,
		SpecialRequests:   req.SpecialRequests,
	})
	if err != nil {
		if _, ok := err.(*transport.CapacityError); ok {
			metrics.RecordCapacityRejection()
		}
		return nil, err
	}

	metrics.RecordBooking(created.PaymentMethod)
	metrics.RecordSeatsReserved(created.SeatsBooked)
	logger.Infof("Booking %s created: route %s, %d seat(s), total %s",
		created.ID, created.TransportOptionID, created.SeatsBooked, created.TotalAmount)

	s.notifications.Publish(ctx, notification.EventBookingCreated, student.UserID.String(), map[string]interface{}{
		"booking_id":   created.ID.String(),
		"booking_date": req.BookingDate,
		"seats":        created.SeatsBooked,
		"total_amount": created.TotalAmount.String(),
	})

	return created, nil
}

func (s *service) GetBooking(ctx context.Context, actor user.Actor, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingAccess(ctx, actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListStudentBookings(ctx context.Context, student *user.StudentProfile) ([]Booking, error) {
	return s.repo.ListByStudent(ctx, student.ID)
}

func (s *service) ListOrganizerBookings(ctx context.Context, organizer *user.OrganizerProfile) ([]Booking, error) {
	return s.repo.ListByOrganizer(ctx, organizer.ID)
}

// ConfirmBooking moves a pending booking to confirmed. Only the organizer
// who owns the route may confirm.
func (s *service) ConfirmBooking(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID) (*Booking, error) {
	return s.transitionAsOrganizer(ctx, organizer, id, StatusPending, StatusConfirmed, notification.EventBookingConfirmed)
}

func (s *service) CompleteBooking(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID) (*Booking, error) {
	return s.transitionAsOrganizer(ctx, organizer, id, StatusConfirmed, StatusCompleted, notification.EventBookingCompleted)
}

func (s *service) transitionAsOrganizer(ctx context.Context, organizer *user.OrganizerProfile, id uuid.UUID, from, to, event string) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	route, err := s.transportRepo.GetRouteByID(ctx, b.TransportOptionID)
	if err != nil {
		return nil, err
	}
	if route.OrganizerID != organizer.ID {
		return nil, ErrNotBookingOwner
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(from, to)
	logger.Infof("Booking %s: %s -> %s", id, from, to)

	s.notifications.Publish(ctx, event, b.StudentProfileID.String(), map[string]interface{}{
		"booking_id": id.String(),
		"status":     to,
	})

	return updated, nil
}

// CancelBooking cancels the student's own booking and releases its seats.
// Paid bookings come back flagged refund-eligible.
func (s *service) CancelBooking(ctx context.Context, student *user.StudentProfile, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.StudentProfileID != student.ID {
		return nil, ErrNotBookingOwner
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(b.BookingStatus, StatusCancelled)
	metrics.RecordSeatsReleased(cancelled.SeatsBooked)
	logger.Infof("Booking %s cancelled, %d seat(s) released", id, cancelled.SeatsBooked)

	s.notifications.Publish(ctx, notification.EventBookingCancelled, student.UserID.String(), map[string]interface{}{
		"booking_id":    id.String(),
		"refund_status": cancelled.RefundStatus,
	})

	return cancelled, nil
}

func (s *service) RequestRefund(ctx context.Context, student *user.StudentProfile, req RefundRequestCreate) (*RefundRequest, error) {
	b, err := s.repo.GetBookingByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.StudentProfileID != student.ID {
		return nil, ErrNotBookingOwner
	}

	if b.BookingStatus != StatusConfirmed && b.BookingStatus != StatusCompleted {
		return nil, ErrNotEligible
	}
	if b.PaymentStatus != PaymentPaid {
		return nil, ErrNotEligible
	}

	amount, err := decimal.NewFromString(req.RefundAmount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(b.TotalAmount) {
		return nil, ErrInvalidAmount
	}

	exists, err := s.repo.HasRefundRequest(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRefundRequest
	}

	route, err := s.transportRepo.GetRouteByID(ctx, b.TransportOptionID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateRefundRequest(ctx, &RefundRequest{
		BookingID:        b.ID,
		StudentProfileID: student.ID,
		OrganizerID:      route.OrganizerID,
		RefundAmount:     amount,
		Reason:           req.Reason,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRefundRequest()
	logger.Infof("Refund request %s created for booking %s (%s)", created.ID, b.ID, amount)

	s.notifications.Publish(ctx, notification.EventRefundRequested, student.UserID.String(), map[string]interface{}{
		"refund_request_id": created.ID.String(),
		"booking_id":        b.ID.String(),
		"amount":            amount.String(),
	})

	return created, nil
}

func (s *service) GetRefundRequest(ctx context.Context, actor user.Actor, id uuid.UUID) (*RefundRequest, error) {
	rr, err := s.repo.GetRefundRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case auth.RoleAdmin:
		return rr, nil
	case auth.RoleStudent:
		if actor.Student != nil && rr.StudentProfileID == actor.Student.ID {
			return rr, nil
		}
	case auth.RoleOrganizer:
		if actor.Organizer != nil && rr.OrganizerID == actor.Organizer.ID {
			return rr, nil
		}
	}
	return nil, ErrNotBookingOwner
}

func (s *service) ListRefundRequests(ctx context.Context, actor user.Actor) ([]RefundRequest, error) {
	switch actor.Role {
	case auth.RoleStudent:
		return s.repo.ListRefundRequests(ctx, "student", actor.Student.ID.String())
	case auth.RoleOrganizer:
		return s.repo.ListRefundRequests(ctx, "organizer", actor.Organizer.ID.String())
	default:
		return s.repo.ListRefundRequests(ctx, "", "")
	}
}

// ProcessRefundDecision advances a refund request. Approve and reject leave
// the money alone; processed is the step that credits the wallet.
func (s *service) ProcessRefundDecision(ctx context.Context, adminUserID uuid.UUID, id uuid.UUID, req RefundDecisionRequest) (*RefundRequest, error) {
	var (
		rr  *RefundRequest
		err error
	)

	switch req.Decision {
	case RefundApproved, RefundRejected:
		rr, err = s.repo.DecideRefund(ctx, id, req.Decision, req.AdminNotes, adminUserID)
	case RefundProcessed:
		rr, err = s.repo.ProcessRefund(ctx, id, adminUserID)
	default:
		return nil, ErrInvalidDecision
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordRefundDecision(req.Decision)
	logger.Infof("Refund request %s: %s", id, req.Decision)

	event := notification.EventRefundDecided
	if req.Decision == RefundProcessed {
		event = notification.EventRefundProcessed
	}
	s.notifications.Publish(ctx, event, rr.StudentProfileID.String(), map[string]interface{}{
		"refund_request_id": id.String(),
		"decision":          req.Decision,
		"amount":            rr.RefundAmount.String(),
	})

	return rr, nil
}

func (s *service) GetStudentStats(ctx context.Context, student *user.StudentProfile) (*BookingStats, error) {
	return s.repo.GetStudentStats(ctx, student.ID)
}

func (s *service) authorizeBookingAccess(ctx context.Context, actor user.Actor, b *Booking) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleStudent:
		if actor.Student != nil && b.StudentProfileID == actor.Student.ID {
			return nil
		}
	case auth.RoleOrganizer:
		if actor.Organizer != nil {
			route, err := s.transportRepo.GetRouteByID(ctx, b.TransportOptionID)
			if err != nil {
				return err
			}
			if route.OrganizerID == actor.Organizer.ID {
				return nil
			}
		}
	}
	return ErrNotBookingOwner
}
