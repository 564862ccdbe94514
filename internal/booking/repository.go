package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Trevolee01/Bui-transport/internal/db"
)

const bookingColumns = `id, student_profile_id, transport_option_id, booking_date, seats_booked,
	total_amount, platform_fee, organizer_amount, booking_status, payment_status,
	payment_method, refund_amount, refund_status, refund_reason, special_requests,
	created_at, updated_at`

const refundColumns = `id, booking_id, student_profile_id, organizer_id, refund_amount, reason,
	status, admin_notes, processed_by, processed_at, created_at`

// SeatInventory is the slice of the route catalog the booking engine composes
// into its transactions. Seat counts may only change through it.
type SeatInventory interface {
	ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error
	ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error
}

// WalletLedger is the slice of the payment ledger the refund workflow needs.
// Both writes happen inside the caller's transaction so a processed refund,
// its ledger entry and the booking flags commit or roll back as one unit.
type WalletLedger interface {
	CreditTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, amount decimal.Decimal, referenceType string, referenceID uuid.UUID, description string) error
	InsertRefundTransactionTx(ctx context.Context, tx *sqlx.Tx, studentProfileID uuid.UUID, organizerID, bookingID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db     *sqlx.DB
	seats  SeatInventory
	wallet WalletLedger
}

func NewRepository(db *sqlx.DB, seats SeatInventory, wallet WalletLedger) Repository {
	return &repository{db: db, seats: seats, wallet: wallet}
}

// CreateBooking reserves seats and inserts the booking row in one
// transaction: a failure after the reservation rolls the seats back.
func (r *repository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.seats.ReserveSeatsTx(ctx, tx, b.TransportOptionID, b.SeatsBooked); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bookings
			(student_profile_id, transport_option_id, booking_date, seats_booked,
			 total_amount, platform_fee, organizer_amount, payment_method, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookingColumns

	var created Booking
	err = tx.QueryRowxContext(ctx, query,
		b.StudentProfileID, b.TransportOptionID, b.BookingDate, b.SeatsBooked,
		b.TotalAmount, b.PlatformFee, b.OrganizerAmount, b.PaymentMethod, b.SpecialRequests,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) ListByStudent(ctx context.Context, studentProfileID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_profile_id = $1
		ORDER BY created_at DESC
	`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, studentProfileID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT b.id, b.student_profile_id, b.transport_option_id, b.booking_date, b.seats_booked,
		       b.total_amount, b.platform_fee, b.organizer_amount, b.booking_status, b.payment_status,
		       b.payment_method, b.refund_amount, b.refund_status, b.refund_reason, b.special_requests,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN transport_options t ON b.transport_option_id = t.id
		WHERE t.organizer_id = $1
		ORDER BY b.created_at DESC
	`

	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, query, organizerID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatus performs a status-guarded transition. The WHERE clause on the
// current status is the serialization point: a concurrent writer that got
// there first leaves zero rows affected, and the caller gets an
// InvalidTransitionError computed from the state that actually won.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET booking_status = $1, updated_at = NOW()
		WHERE id = $2 AND booking_status = $3
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.QueryRowxContext(ctx, query, to, id, from).StructScan(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, lookupErr := r.GetBookingByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return nil, &InvalidTransitionError{Entity: "booking", From: current.BookingStatus, To: to}
}

// Cancel transitions the booking to cancelled and releases its seats in one
// transaction. If the booking was paid it is flagged refund-eligible; no
// money moves here.
func (r *repository) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Booking
	err = tx.QueryRowxContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id,
	).StructScan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if !CanTransitionBooking(current.BookingStatus, StatusCancelled) {
		return nil, &InvalidTransitionError{Entity: "booking", From: current.BookingStatus, To: StatusCancelled}
	}

	if err := r.seats.ReleaseSeatsTx(ctx, tx, current.TransportOptionID, current.SeatsBooked); err != nil {
		return nil, err
	}

	query := `
		UPDATE bookings
		SET booking_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + bookingColumns
	args := []interface{}{StatusCancelled, id}

	if current.PaymentStatus == PaymentPaid {
		query = `
			UPDATE bookings
			SET booking_status = $1, refund_status = $2, refund_amount = total_amount, updated_at = NOW()
			WHERE id = $3
			RETURNING ` + bookingColumns
		args = []interface{}{StatusCancelled, RefundRequested, id}
	}

	var cancelled Booking
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&cancelled); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &cancelled, nil
}

func (r *repository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + bookingColumns

	var b Booking
	err := r.db.QueryRowxContext(ctx, query, status, id).StructScan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) HasRefundRequest(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM refund_requests WHERE booking_id = $1)`, bookingID)
}

func (r *repository) CreateRefundRequest(ctx context.Context, rr *RefundRequest) (*RefundRequest, error) {
	query := `
		INSERT INTO refund_requests (booking_id, student_profile_id, organizer_id, refund_amount, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + refundColumns

	var created RefundRequest
	err := r.db.QueryRowxContext(ctx, query,
		rr.BookingID, rr.StudentProfileID, rr.OrganizerID, rr.RefundAmount, rr.Reason,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetRefundRequestByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`

	var rr RefundRequest
	err := r.db.GetContext(ctx, &rr, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefundRequestNotFound
		}
		return nil, err
	}

	return &rr, nil
}

func (r *repository) ListRefundRequests(ctx context.Context, filter, id string) ([]RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests`
	var args []interface{}

	switch filter {
	case "student":
		query += ` WHERE student_profile_id = $1`
		args = append(args, id)
	case "organizer":
		query += ` WHERE organizer_id = $1`
		args = append(args, id)
	}
	query += ` ORDER BY created_at DESC`

	var requests []RefundRequest
	err := r.db.SelectContext(ctx, &requests, query, args...)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// DecideRefund moves a pending request to approved or rejected. The guarded
// UPDATE is the serialization point for racing admins.
func (r *repository) DecideRefund(ctx context.Context, id uuid.UUID, decision string, adminNotes *string, decidedBy uuid.UUID) (*RefundRequest, error) {
	query := `
		UPDATE refund_requests
		SET status = $1, admin_notes = COALESCE($2, admin_notes), processed_by = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + refundColumns

	var rr RefundRequest
	err := r.db.QueryRowxContext(ctx, query, decision, adminNotes, decidedBy, id, RefundPending).StructScan(&rr)
	if err == nil {
		return &rr, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, lookupErr := r.GetRefundRequestByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return nil, &InvalidTransitionError{Entity: "refund request", From: current.Status, To: decision}
}

// ProcessRefund is the money-moving step: in a single transaction it marks
// the approved request processed, credits the student's wallet (ledger row +
// cached balance), records the refund transaction and flags the booking.
func (r *repository) ProcessRefund(ctx context.Context, id uuid.UUID, processedBy uuid.UUID) (*RefundRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE refund_requests
		SET status = $1, processed_by = $2, processed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + refundColumns

	var rr RefundRequest
	err = tx.QueryRowxContext(ctx, query, RefundProcessed, processedBy, time.Now(), id, RefundApproved).StructScan(&rr)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		current, lookupErr := r.GetRefundRequestByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &InvalidTransitionError{Entity: "refund request", From: current.Status, To: RefundProcessed}
	}

	description := fmt.Sprintf("Refund for booking %s", rr.BookingID)
	if err := r.wallet.CreditTx(ctx, tx, rr.StudentProfileID, rr.RefundAmount, "refund", rr.ID, description); err != nil {
		return nil, err
	}

	if err := r.wallet.InsertRefundTransactionTx(ctx, tx, rr.StudentProfileID, rr.OrganizerID, rr.BookingID, rr.RefundAmount); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = $1, refund_status = $2, updated_at = NOW()
		WHERE id = $3
	`, PaymentRefunded, RefundProcessed, rr.BookingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &rr, nil
}

func (r *repository) GetStudentStats(ctx context.Context, studentProfileID uuid.UUID) (*BookingStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'pending') AS pending_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'confirmed') AS confirmed_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'completed') AS completed_bookings,
			COUNT(*) FILTER (WHERE booking_status = 'cancelled') AS cancelled_bookings,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0) AS total_spent
		FROM bookings
		WHERE student_profile_id = $1
	`

	var stats BookingStats
	err := r.db.GetContext(ctx, &stats, query, studentProfileID)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
