package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Trevolee01/Bui-transport/internal/auth"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) CreateStudent(ctx context.Context, u *User, p *StudentProfile) (*User, *StudentProfile, error) {
	args := m.Called(ctx, u, p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*User), args.Get(1).(*StudentProfile), args.Error(2)
}

func (m *MockRepo) CreateOrganizer(ctx context.Context, u *User, p *OrganizerProfile) (*User, *OrganizerProfile, error) {
	args := m.Called(ctx, u, p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*User), args.Get(1).(*OrganizerProfile), args.Error(2)
}

func (m *MockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepo) GetStudentProfile(ctx context.Context, userID uuid.UUID) (*StudentProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StudentProfile), args.Error(1)
}

func (m *MockRepo) GetStudentProfileByID(ctx context.Context, id uuid.UUID) (*StudentProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StudentProfile), args.Error(1)
}

func (m *MockRepo) GetOrganizerProfile(ctx context.Context, userID uuid.UUID) (*OrganizerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrganizerProfile), args.Error(1)
}

func (m *MockRepo) GetOrganizerProfileByID(ctx context.Context, id uuid.UUID) (*OrganizerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrganizerProfile), args.Error(1)
}

func (m *MockRepo) SetOrganizerApproval(ctx context.Context, organizerID uuid.UUID, status string, decidedAt time.Time) (*OrganizerProfile, error) {
	args := m.Called(ctx, organizerID, status, decidedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrganizerProfile), args.Error(1)
}

func (m *MockRepo) ListPendingOrganizers(ctx context.Context) ([]OrganizerProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OrganizerProfile), args.Error(1)
}

const testJWTSecret = "unit-test-secret"

func studentRegisterRequest() RegisterRequest {
	return RegisterRequest{
		Email:       "ada@campus.edu",
		Password:    "password123",
		FirstName:   "Ada",
		LastName:    "Obi",
		PhoneNumber: "+2348012345678",
		Role:        auth.RoleStudent,
		StudentID:   "CSC/2021/041",
		Department:  "Computer Science",
		Level:       300,
	}
}

func TestRegisterStudent(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testJWTSecret)

	req := studentRegisterRequest()
	created := &User{ID: uuid.New(), Email: req.Email, Role: auth.RoleStudent}

	repo.On("EmailExists", mock.Anything, req.Email).Return(false, nil)
	repo.On("CreateStudent", mock.Anything, mock.MatchedBy(func(u *User) bool {
		// the hash must go to storage, never the plaintext
		return u.Email == req.Email && u.PasswordHash != "" && u.PasswordHash != req.Password
	}), mock.MatchedBy(func(p *StudentProfile) bool {
		return p.StudentID == req.StudentID && p.Level == req.Level
	})).Return(created, &StudentProfile{ID: uuid.New(), UserID: created.ID}, nil)

	resp, err := svc.Register(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, created.ID, resp.User.ID)
	repo.AssertExpectations(t)
}

func TestRegisterOrganizer(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testJWTSecret)

	req := RegisterRequest{
		Email:         "rides@campus.edu",
		Password:      "password123",
		FirstName:     "Musa",
		LastName:      "Bello",
		PhoneNumber:   "+2348098765432",
		Role:          auth.RoleOrganizer,
		BusinessName:  "Campus Rides Ltd",
		LicenseNumber: "TRN-0042",
	}
	created := &User{ID: uuid.New(), Email: req.Email, Role: auth.RoleOrganizer}

	repo.On("EmailExists", mock.Anything, req.Email).Return(false, nil)
	repo.On("CreateOrganizer", mock.Anything, mock.Anything, mock.MatchedBy(func(p *OrganizerProfile) bool {
		return p.BusinessName == req.BusinessName && p.LicenseNumber != nil && *p.LicenseNumber == req.LicenseNumber
	})).Return(created, &OrganizerProfile{ID: uuid.New(), UserID: created.ID, ApprovalStatus: ApprovalPending}, nil)

	resp, err := svc.Register(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, auth.RoleOrganizer, resp.User.Role)
	repo.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testJWTSecret)

	req := studentRegisterRequest()
	repo.On("EmailExists", mock.Anything, req.Email).Return(true, nil)

	_, err := svc.Register(context.Background(), req)

	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testJWTSecret)

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u := &User{ID: uuid.New(), Email: "ada@campus.edu", PasswordHash: hash, Role: auth.RoleStudent}

	t.Run("Valid credentials", func(t *testing.T) {
		repo.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

		resp, err := svc.Login(context.Background(), LoginRequest{Email: u.Email, Password: "password123"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: u.Email, Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		repo.On("FindByEmail", mock.Anything, "ghost@campus.edu").Return(nil, ErrUserNotFound)

		_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@campus.edu", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestResolveActor(t *testing.T) {
	t.Run("Student gets student profile", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo, testJWTSecret)

		userID := uuid.New()
		profile := &StudentProfile{ID: uuid.New(), UserID: userID}
		repo.On("GetStudentProfile", mock.Anything, userID).Return(profile, nil)

		actor, err := svc.ResolveActor(context.Background(), userID, auth.RoleStudent)

		require.NoError(t, err)
		assert.Equal(t, profile, actor.Student)
		assert.Nil(t, actor.Organizer)
	})

	t.Run("Organizer gets organizer profile", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo, testJWTSecret)

		userID := uuid.New()
		profile := &OrganizerProfile{ID: uuid.New(), UserID: userID, ApprovalStatus: ApprovalApproved}
		repo.On("GetOrganizerProfile", mock.Anything, userID).Return(profile, nil)

		actor, err := svc.ResolveActor(context.Background(), userID, auth.RoleOrganizer)

		require.NoError(t, err)
		assert.Equal(t, profile, actor.Organizer)
	})

	t.Run("Admin carries no profile", func(t *testing.T) {
		svc := NewService(new(MockRepo), testJWTSecret)

		actor, err := svc.ResolveActor(context.Background(), uuid.New(), auth.RoleAdmin)

		require.NoError(t, err)
		assert.Nil(t, actor.Student)
		assert.Nil(t, actor.Organizer)
	})

	t.Run("Unknown role", func(t *testing.T) {
		svc := NewService(new(MockRepo), testJWTSecret)

		_, err := svc.ResolveActor(context.Background(), uuid.New(), "driver")

		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestDecideOrganizerApproval(t *testing.T) {
	t.Run("Approve", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo, testJWTSecret)

		organizerID := uuid.New()
		repo.On("SetOrganizerApproval", mock.Anything, organizerID, ApprovalApproved, mock.Anything).
			Return(&OrganizerProfile{ID: organizerID, ApprovalStatus: ApprovalApproved}, nil)

		got, err := svc.DecideOrganizerApproval(context.Background(), organizerID, ApprovalApproved)

		require.NoError(t, err)
		assert.Equal(t, ApprovalApproved, got.ApprovalStatus)
	})

	t.Run("Invalid decision", func(t *testing.T) {
		svc := NewService(new(MockRepo), testJWTSecret)

		_, err := svc.DecideOrganizerApproval(context.Background(), uuid.New(), "maybe")

		assert.ErrorIs(t, err, ErrInvalidDecision)
	})
}

func TestRefreshToken(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, testJWTSecret)

	u := &User{ID: uuid.New(), Email: "ada@campus.edu", Role: auth.RoleStudent}
	refreshToken, err := auth.GenerateRefreshToken(u.ID, u.Email, u.Role, testJWTSecret)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	newAccess, got, err := svc.RefreshToken(context.Background(), refreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, u.ID, got.ID)

	claims, err := auth.ValidateToken(newAccess, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}
