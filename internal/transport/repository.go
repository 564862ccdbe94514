package transport

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const routeColumns = `id, organizer_id, route_name, departure_location, destination,
	departure_time, arrival_time, price, total_seats, available_seats,
	days_of_operation, is_active, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error) {
	query := `
		INSERT INTO transport_options
			(organizer_id, route_name, departure_location, destination,
			 departure_time, arrival_time, price, total_seats, available_seats, days_of_operation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9)
		RETURNING ` + routeColumns

	var created TransportOption
	err := r.db.QueryRowxContext(ctx, query,
		route.OrganizerID, route.RouteName, route.DepartureLocation, route.Destination,
		route.DepartureTime, route.ArrivalTime, route.Price, route.TotalSeats,
		pq.Array([]string(route.DaysOfOperation)),
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) UpdateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error) {
	query := `
		UPDATE transport_options
		SET route_name = $1, departure_location = $2, destination = $3,
		    departure_time = $4, arrival_time = $5, price = $6,
		    days_of_operation = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + routeColumns

	var updated TransportOption
	err := r.db.QueryRowxContext(ctx, query,
		route.RouteName, route.DepartureLocation, route.Destination,
		route.DepartureTime, route.ArrivalTime, route.Price,
		pq.Array([]string(route.DaysOfOperation)), route.IsActive, route.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) GetRouteByID(ctx context.Context, id uuid.UUID) (*TransportOption, error) {
	query := `SELECT ` + routeColumns + ` FROM transport_options WHERE id = $1`

	var route TransportOption
	err := r.db.GetContext(ctx, &route, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return &route, nil
}

func (r *repository) ListActiveRoutes(ctx context.Context, departure, destination string) ([]TransportOption, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM transport_options
		WHERE is_active = TRUE
		  AND ($1 = '' OR departure_location ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR destination ILIKE '%' || $2 || '%')
		ORDER BY departure_time ASC
	`

	var routes []TransportOption
	err := r.db.SelectContext(ctx, &routes, query, departure, destination)
	if err != nil {
		return nil, err
	}

	return routes, nil
}

func (r *repository) ListRoutesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]TransportOption, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM transport_options
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`

	var routes []TransportOption
	err := r.db.SelectContext(ctx, &routes, query, organizerID)
	if err != nil {
		return nil, err
	}

	return routes, nil
}

// reserveState is the row-locked snapshot consulted before any seat mutation.
type reserveState struct {
	AvailableSeats int    `db:"available_seats"`
	TotalSeats     int    `db:"total_seats"`
	IsActive       bool   `db:"is_active"`
	ApprovalStatus string `db:"approval_status"`
}

// ReserveSeatsTx decrements available_seats inside the caller's transaction.
// The route row stays locked until the caller commits, so two concurrent
// bookings cannot both pass the capacity check.
func (r *repository) ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error {
	var state reserveState
	err := tx.QueryRowxContext(ctx, `
		SELECT t.available_seats, t.total_seats, t.is_active, o.approval_status
		FROM transport_options t
		JOIN organizer_profiles o ON t.organizer_id = o.id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, routeID).StructScan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRouteNotFound
		}
		return err
	}

	if !state.IsActive || state.ApprovalStatus != "approved" {
		return ErrRouteNotAvailable
	}

	if count > state.AvailableSeats {
		return &CapacityError{Requested: count, Available: state.AvailableSeats}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transport_options
		SET available_seats = available_seats - $1, updated_at = NOW()
		WHERE id = $2
	`, count, routeID)
	return err
}

// ReleaseSeatsTx increments available_seats, clamped at total_seats.
func (r *repository) ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE transport_options
		SET available_seats = LEAST(total_seats, available_seats + $1), updated_at = NOW()
		WHERE id = $2
	`, count, routeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRouteNotFound
	}

	return nil
}

func (r *repository) ReserveSeats(ctx context.Context, routeID uuid.UUID, count int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ReserveSeatsTx(ctx, tx, routeID, count); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ReleaseSeats(ctx context.Context, routeID uuid.UUID, count int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ReleaseSeatsTx(ctx, tx, routeID, count); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CreateTripUpdate(ctx context.Context, update *TripUpdate) (*TripUpdate, error) {
	query := `
		INSERT INTO trip_updates (transport_option_id, organizer_id, update_type, title, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, transport_option_id, organizer_id, update_type, title, message, is_active, created_at
	`

	var created TripUpdate
	err := r.db.QueryRowxContext(ctx, query,
		update.TransportOptionID, update.OrganizerID, update.UpdateType, update.Title, update.Message,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListTripUpdates(ctx context.Context, routeID uuid.UUID) ([]TripUpdate, error) {
	query := `
		SELECT id, transport_option_id, organizer_id, update_type, title, message, is_active, created_at
		FROM trip_updates
		WHERE transport_option_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	var updates []TripUpdate
	err := r.db.SelectContext(ctx, &updates, query, routeID)
	if err != nil {
		return nil, err
	}

	return updates, nil
}

func (r *repository) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	query := `
		INSERT INTO reviews (booking_id, student_user_id, transport_option_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, student_user_id, transport_option_id, rating, comment, created_at
	`

	var created Review
	err := r.db.QueryRowxContext(ctx, query,
		review.BookingID, review.StudentUserID, review.TransportOptionID, review.Rating, review.Comment,
	).StructScan(&created)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) ListReviews(ctx context.Context, routeID uuid.UUID) ([]Review, error) {
	query := `
		SELECT id, booking_id, student_user_id, transport_option_id, rating, comment, created_at
		FROM reviews
		WHERE transport_option_id = $1
		ORDER BY created_at DESC
	`

	var reviews []Review
	err := r.db.SelectContext(ctx, &reviews, query, routeID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}
