package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateStudent(ctx context.Context, u *User, p *StudentProfile) (*User, *StudentProfile, error)
	CreateOrganizer(ctx context.Context, u *User, p *OrganizerProfile) (*User, *OrganizerProfile, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetStudentProfile(ctx context.Context, userID uuid.UUID) (*StudentProfile, error)
	GetStudentProfileByID(ctx context.Context, id uuid.UUID) (*StudentProfile, error)
	GetOrganizerProfile(ctx context.Context, userID uuid.UUID) (*OrganizerProfile, error)
	GetOrganizerProfileByID(ctx context.Context, id uuid.UUID) (*OrganizerProfile, error)
	SetOrganizerApproval(ctx context.Context, organizerID uuid.UUID, status string, decidedAt time.Time) (*OrganizerProfile, error)
	ListPendingOrganizers(ctx context.Context) ([]OrganizerProfile, error)
}
