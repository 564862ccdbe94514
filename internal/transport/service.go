package transport

import (
	"context"
	"strings"
	"time"

	"github.com/Trevolee01/Bui-transport/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateRoute(ctx context.Context, organizer *user.OrganizerProfile, req CreateRouteRequest) (*TransportOption, error)
	UpdateRoute(ctx context.Context, organizer *user.OrganizerProfile, routeID uuid.UUID, req UpdateRouteRequest) (*TransportOption, error)
	GetRoute(ctx context.Context, routeID uuid.UUID) (*TransportOption, error)
	ListRoutes(ctx context.Context, departure, destination string) ([]TransportOption, error)
	ListOwnRoutes(ctx context.Context, organizer *user.OrganizerProfile) ([]TransportOption, error)
	CreateTripUpdate(ctx context.Context, organizer *user.OrganizerProfile, routeID uuid.UUID, req CreateTripUpdateRequest) (*TripUpdate, error)
	ListTripUpdates(ctx context.Context, routeID uuid.UUID) ([]TripUpdate, error)
	CreateReview(ctx context.Context, studentUserID uuid.UUID, routeID uuid.UUID, req CreateReviewRequest) (*Review, error)
	ListReviews(ctx context.Context, routeID uuid.UUID) ([]Review, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalizeDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	for _, d := range days {
		day := strings.ToLower(strings.TrimSpace(d))
		if !validDays[day] {
			return nil, ErrInvalidDay
		}
		out = append(out, day)
	}
	return out, nil
}

func validateSchedule(departure, arrival string) error {
	dep, err := time.Parse("15:04", departure)
	if err != nil {
		return ErrInvalidSchedule
	}
	arr, err := time.Parse("15:04", arrival)
	if err != nil {
		return ErrInvalidSchedule
	}
	if !dep.Before(arr) {
		return ErrInvalidSchedule
	}
	return nil
}

func (s *service) CreateRoute(ctx context.Context, organizer *user.OrganizerProfile, req CreateRouteRequest) (*TransportOption, error) {
	if organizer.ApprovalStatus != user.ApprovalApproved {
		return nil, ErrRouteNotAvailable
	}

	if err := validateSchedule(req.DepartureTime, req.ArrivalTime); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	days, err := normalizeDays(req.DaysOfOperation)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateRoute(ctx, &TransportOption{
		OrganizerID:       organizer.ID,
		RouteName:         req.RouteName,
		DepartureLocation: req.DepartureLocation,
		Destination:       req.Destination,
		DepartureTime:     req.DepartureTime,
		ArrivalTime:       req.ArrivalTime,
		Price:             price,
		TotalSeats:        req.TotalSeats,
		DaysOfOperation:   days,
	})
}

func (s *service) UpdateRoute(ctx context.Context, organizer *user.OrganizerProfile, routeID uuid.UUID, req UpdateRouteRequest) (*TransportOption, error) {
	route, err := s.repo.GetRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if route.OrganizerID != organizer.ID {
		return nil, ErrNotRouteOwner
	}

	if req.RouteName != nil {
		route.RouteName = *req.RouteName
	}
	if req.DepartureLocation != nil {
		route.DepartureLocation = *req.DepartureLocation
	}
	if req.Destination != nil {
		route.Destination = *req.Destination
	}
	if req.DepartureTime != nil {
		route.DepartureTime = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		route.ArrivalTime = *req.ArrivalTime
	}
	if err := validateSchedule(route.DepartureTime, route.ArrivalTime); err != nil {
		return nil, err
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		route.Price = price
	}

	if req.DaysOfOperation != nil {
		days, err := normalizeDays(req.DaysOfOperation)
		if err != nil {
			return nil, err
		}
		route.DaysOfOperation = days
	}

	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}

	return s.repo.UpdateRoute(ctx, route)
}

func (s *service) GetRoute(ctx context.Context, routeID uuid.UUID) (*TransportOption, error) {
	return s.repo.GetRouteByID(ctx, routeID)
}

func (s *service) ListRoutes(ctx context.Context, departure, destination string) ([]TransportOption, error) {
	return s.repo.ListActiveRoutes(ctx, departure, destination)
}

func (s *service) ListOwnRoutes(ctx context.Context, organizer *user.OrganizerProfile) ([]TransportOption, error) {
	return s.repo.ListRoutesByOrganizer(ctx, organizer.ID)
}

func (s *service) CreateTripUpdate(ctx context.Context, organizer *user.OrganizerProfile, routeID uuid.UUID, req CreateTripUpdateRequest) (*TripUpdate, error) {
	route, err := s.repo.GetRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if route.OrganizerID != organizer.ID {
		return nil, ErrNotRouteOwner
	}

	return s.repo.CreateTripUpdate(ctx, &TripUpdate{
		TransportOptionID: route.ID,
		OrganizerID:       organizer.ID,
		UpdateType:        req.UpdateType,
		Title:             req.Title,
		Message:           req.Message,
	})
}

func (s *service) ListTripUpdates(ctx context.Context, routeID uuid.UUID) ([]TripUpdate, error) {
	return s.repo.ListTripUpdates(ctx, routeID)
}

func (s *service) CreateReview(ctx context.Context, studentUserID uuid.UUID, routeID uuid.UUID, req CreateReviewRequest) (*Review, error) {
	route, err := s.repo.GetRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateReview(ctx, &Review{
		BookingID:         req.BookingID,
		StudentUserID:     studentUserID,
		TransportOptionID: route.ID,
		Rating:            req.Rating,
		Comment:           req.Comment,
	})
}

func (s *service) ListReviews(ctx context.Context, routeID uuid.UUID) ([]Review, error) {
	return s.repo.ListReviews(ctx, routeID)
}
