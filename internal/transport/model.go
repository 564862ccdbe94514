package transport

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var validDays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

type TransportOption struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	OrganizerID       uuid.UUID       `db:"organizer_id" json:"organizer_id"`
	RouteName         string          `db:"route_name" json:"route_name"`
	DepartureLocation string          `db:"departure_location" json:"departure_location"`
	Destination       string          `db:"destination" json:"destination"`
	DepartureTime     string          `db:"departure_time" json:"departure_time"`
	ArrivalTime       string          `db:"arrival_time" json:"arrival_time"`
	Price             decimal.Decimal `db:"price" json:"price"`
	TotalSeats        int             `db:"total_seats" json:"total_seats"`
	AvailableSeats    int             `db:"available_seats" json:"available_seats"`
	DaysOfOperation   pq.StringArray  `db:"days_of_operation" json:"days_of_operation"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// IsOperatingOn reports whether the route runs on the given date's weekday.
func (t *TransportOption) IsOperatingOn(date time.Time) bool {
	day := strings.ToLower(date.Weekday().String())
	for _, d := range t.DaysOfOperation {
		if d == day {
			return true
		}
	}
	return false
}

type TripUpdate struct {
	ID                uuid.UUID `db:"id" json:"id"`
	TransportOptionID uuid.UUID `db:"transport_option_id" json:"transport_option_id"`
	OrganizerID       uuid.UUID `db:"organizer_id" json:"organizer_id"`
	UpdateType        string    `db:"update_type" json:"update_type"`
	Title             string    `db:"title" json:"title"`
	Message           string    `db:"message" json:"message"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type Review struct {
	ID                uuid.UUID `db:"id" json:"id"`
	BookingID         uuid.UUID `db:"booking_id" json:"booking_id"`
	StudentUserID     uuid.UUID `db:"student_user_id" json:"student_user_id"`
	TransportOptionID uuid.UUID `db:"transport_option_id" json:"transport_option_id"`
	Rating            int       `db:"rating" json:"rating"`
	Comment           *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type CreateRouteRequest struct {
	RouteName         string   `json:"route_name" binding:"required"`
	DepartureLocation string   `json:"departure_location" binding:"required"`
	Destination       string   `json:"destination" binding:"required"`
	DepartureTime     string   `json:"departure_time" binding:"required"`
	ArrivalTime       string   `json:"arrival_time" binding:"required"`
	Price             string   `json:"price" binding:"required"`
	TotalSeats        int      `json:"total_seats" binding:"required,min=1"`
	DaysOfOperation   []string `json:"days_of_operation" binding:"required,min=1"`
}

type UpdateRouteRequest struct {
	RouteName         *string  `json:"route_name"`
	DepartureLocation *string  `json:"departure_location"`
	Destination       *string  `json:"destination"`
	DepartureTime     *string  `json:"departure_time"`
	ArrivalTime       *string  `json:"arrival_time"`
	Price             *string  `json:"price"`
	DaysOfOperation   []string `json:"days_of_operation"`
	IsActive          *bool    `json:"is_active"`
}

type CreateTripUpdateRequest struct {
	UpdateType string `json:"update_type" binding:"required,oneof=delay cancellation route_change location general"`
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string   `json:"comment"`
}
