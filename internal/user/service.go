package user

import (
	"context"
	"errors"
	"time"

	"github.com/Trevolee01/Bui-transport/internal/auth"

	"github.com/google/uuid"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidDecision    = errors.New("approval decision must be approved or rejected")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)

	// ResolveActor loads the role-specific profile for an authenticated user.
	// A missing expected profile is an authorization failure, not a crash.
	ResolveActor(ctx context.Context, userID uuid.UUID, role string) (*Actor, error)

	DecideOrganizerApproval(ctx context.Context, organizerID uuid.UUID, decision string) (*OrganizerProfile, error)
	ListPendingOrganizers(ctx context.Context) ([]OrganizerProfile, error)
}

type service struct {
	repo      Repository
	jwtSecret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
	}

	var created *User
	switch req.Role {
	case auth.RoleStudent:
		created, _, err = s.repo.CreateStudent(ctx, u, &StudentProfile{
			StudentID:  req.StudentID,
			Department: req.Department,
			Level:      req.Level,
		})
	case auth.RoleOrganizer:
		var license *string
		if req.LicenseNumber != "" {
			license = &req.LicenseNumber
		}
		created, _, err = s.repo.CreateOrganizer(ctx, u, &OrganizerProfile{
			BusinessName:  req.BusinessName,
			LicenseNumber: license,
		})
	default:
		return nil, errors.New("unsupported role")
	}
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		created.ID,
		created.Email,
		created.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: created, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(
		u.ID,
		u.Email,
		u.Role,
		s.jwtSecret,
		s.jwtSecret,
	)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: u, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *service) GetByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, ErrUserNotFound
	}

	newAccessToken, err := auth.GenerateAccessToken(u.ID, u.Email, u.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, u, nil
}

func (s *service) ResolveActor(ctx context.Context, userID uuid.UUID, role string) (*Actor, error) {
	actor := &Actor{UserID: userID, Role: role}

	switch role {
	case auth.RoleStudent:
		profile, err := s.repo.GetStudentProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		actor.Student = profile
	case auth.RoleOrganizer:
		profile, err := s.repo.GetOrganizerProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		actor.Organizer = profile
	case auth.RoleAdmin:
		// Admins carry no domain profile.
	default:
		return nil, ErrProfileNotFound
	}

	return actor, nil
}

func (s *service) DecideOrganizerApproval(ctx context.Context, organizerID uuid.UUID, decision string) (*OrganizerProfile, error) {
	if decision != ApprovalApproved && decision != ApprovalRejected {
		return nil, ErrInvalidDecision
	}

	return s.repo.SetOrganizerApproval(ctx, organizerID, decision, time.Now())
}

func (s *service) ListPendingOrganizers(ctx context.Context) ([]OrganizerProfile, error) {
	return s.repo.ListPendingOrganizers(ctx)
}
