package transport

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error)
	UpdateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error)
	GetRouteByID(ctx context.Context, id uuid.UUID) (*TransportOption, error)
	ListActiveRoutes(ctx context.Context, departure, destination string) ([]TransportOption, error)
	ListRoutesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]TransportOption, error)

	// Seat inventory protocol. These are the only mutators of available_seats.
	ReserveSeats(ctx context.Context, routeID uuid.UUID, count int) error
	ReleaseSeats(ctx context.Context, routeID uuid.UUID, count int) error
	ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error
	ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error

	CreateTripUpdate(ctx context.Context, update *TripUpdate) (*TripUpdate, error)
	ListTripUpdates(ctx context.Context, routeID uuid.UUID) ([]TripUpdate, error)
	CreateReview(ctx context.Context, review *Review) (*Review, error)
	ListReviews(ctx context.Context, routeID uuid.UUID) ([]Review, error)
}
