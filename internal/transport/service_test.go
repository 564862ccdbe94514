package transport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Trevolee01/Bui-transport/internal/user"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) CreateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error) {
	args := m.Called(ctx, route)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransportOption), args.Error(1)
}

func (m *MockRepo) UpdateRoute(ctx context.Context, route *TransportOption) (*TransportOption, error) {
	args := m.Called(ctx, route)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransportOption), args.Error(1)
}

func (m *MockRepo) GetRouteByID(ctx context.Context, id uuid.UUID) (*TransportOption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransportOption), args.Error(1)
}

func (m *MockRepo) ListActiveRoutes(ctx context.Context, departure, destination string) ([]TransportOption, error) {
	args := m.Called(ctx, departure, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TransportOption), args.Error(1)
}

func (m *MockRepo) ListRoutesByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]TransportOption, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TransportOption), args.Error(1)
}

func (m *MockRepo) ReserveSeats(ctx context.Context, routeID uuid.UUID, count int) error {
	return m.Called(ctx, routeID, count).Error(0)
}

func (m *MockRepo) ReleaseSeats(ctx context.Context, routeID uuid.UUID, count int) error {
	return m.Called(ctx, routeID, count).Error(0)
}

func (m *MockRepo) ReserveSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error {
	return m.Called(ctx, tx, routeID, count).Error(0)
}

func (m *MockRepo) ReleaseSeatsTx(ctx context.Context, tx *sqlx.Tx, routeID uuid.UUID, count int) error {
	return m.Called(ctx, tx, routeID, count).Error(0)
}

func (m *MockRepo) CreateTripUpdate(ctx context.Context, update *TripUpdate) (*TripUpdate, error) {
	args := m.Called(ctx, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TripUpdate), args.Error(1)
}

func (m *MockRepo) ListTripUpdates(ctx context.Context, routeID uuid.UUID) ([]TripUpdate, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]TripUpdate), args.Error(1)
}

func (m *MockRepo) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepo) ListReviews(ctx context.Context, routeID uuid.UUID) ([]Review, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func approvedOrganizer() *user.OrganizerProfile {
	return &user.OrganizerProfile{ID: uuid.New(), ApprovalStatus: user.ApprovalApproved}
}

func validRouteRequest() CreateRouteRequest {
	return CreateRouteRequest{
		RouteName:         "Main Gate - North Campus",
		DepartureLocation: "Main Gate",
		Destination:       "North Campus",
		DepartureTime:     "07:30",
		ArrivalTime:       "08:15",
		Price:             "350.00",
		TotalSeats:        14,
		DaysOfOperation:   []string{"Monday", "WEDNESDAY", " friday "},
	}
}

func TestCreateRouteNormalizesDays(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	repo.On("CreateRoute", mock.Anything, mock.MatchedBy(func(route *TransportOption) bool {
		return len(route.DaysOfOperation) == 3 &&
			route.DaysOfOperation[0] == "monday" &&
			route.DaysOfOperation[1] == "wednesday" &&
			route.DaysOfOperation[2] == "friday"
	})).Return(&TransportOption{ID: uuid.New()}, nil)

	_, err := service.CreateRoute(context.Background(), approvedOrganizer(), validRouteRequest())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateRouteUnapprovedOrganizer(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	organizer := &user.OrganizerProfile{ID: uuid.New(), ApprovalStatus: user.ApprovalPending}
	_, err := service.CreateRoute(context.Background(), organizer, validRouteRequest())

	assert.ErrorIs(t, err, ErrRouteNotAvailable)
	repo.AssertNotCalled(t, "CreateRoute")
}

func TestCreateRouteInvalidSchedule(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	cases := []struct{ dep, arr string }{
		{"08:15", "07:30"}, // arrival before departure
		{"07:30", "07:30"}, // zero-length trip
		{"7am", "08:15"},
		{"07:30", "late"},
	}

	for _, c := range cases {
		req := validRouteRequest()
		req.DepartureTime = c.dep
		req.ArrivalTime = c.arr

		_, err := service.CreateRoute(context.Background(), approvedOrganizer(), req)
		assert.ErrorIs(t, err, ErrInvalidSchedule, "%s -> %s", c.dep, c.arr)
	}
}

func TestCreateRoutePriceBounds(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	// Zero is a valid price: free shuttles exist.
	req := validRouteRequest()
	req.Price = "0"

	repo.On("CreateRoute", mock.Anything, mock.MatchedBy(func(route *TransportOption) bool {
		return route.Price.IsZero()
	})).Return(&TransportOption{ID: uuid.New()}, nil)

	_, err := service.CreateRoute(context.Background(), approvedOrganizer(), req)
	assert.NoError(t, err)
	repo.AssertExpectations(t)

	req.Price = "-50.00"
	_, err = service.CreateRoute(context.Background(), approvedOrganizer(), req)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateRouteInvalidDay(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	req := validRouteRequest()
	req.DaysOfOperation = []string{"monday", "funday"}

	_, err := service.CreateRoute(context.Background(), approvedOrganizer(), req)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestUpdateRouteOwnership(t *testing.T) {
	repo := new(MockRepo)
	service := NewService(repo)

	routeID := uuid.New()
	repo.On("GetRouteByID", mock.Anything, routeID).Return(&TransportOption{
		ID:          routeID,
		OrganizerID: uuid.New(),
	}, nil)

	name := "renamed"
	_, err := service.UpdateRoute(context.Background(), approvedOrganizer(), routeID, UpdateRouteRequest{
		RouteName: &name,
	})

	assert.ErrorIs(t, err, ErrNotRouteOwner)
	repo.AssertNotCalled(t, "UpdateRoute")
}

func TestIsOperatingOn(t *testing.T) {
	route := &TransportOption{DaysOfOperation: []string{"monday", "friday"}}

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Monday", monday.Weekday().String())
	assert.True(t, route.IsOperatingOn(monday))

	tuesday := monday.AddDate(0, 0, 1)
	assert.False(t, route.IsOperatingOn(tuesday))

	friday := monday.AddDate(0, 0, 4)
	assert.True(t, route.IsOperatingOn(friday))
}
