package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	Role         string    `db:"role" json:"role"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type StudentProfile struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`
	StudentID     string          `db:"student_id" json:"student_id"`
	Department    string          `db:"department" json:"department"`
	Level         int             `db:"level" json:"level"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"wallet_balance"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

type OrganizerProfile struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	BusinessName   string     `db:"business_name" json:"business_name"`
	LicenseNumber  *string    `db:"license_number" json:"license_number,omitempty"`
	VehicleCount   int        `db:"vehicle_count" json:"vehicle_count"`
	ApprovalStatus string     `db:"approval_status" json:"approval_status"`
	ApprovalDate   *time.Time `db:"approval_date" json:"approval_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Actor is the authenticated caller of a core operation. Core operations
// receive it explicitly; nothing reads request-scoped globals.
type Actor struct {
	UserID    uuid.UUID
	Role      string
	Student   *StudentProfile
	Organizer *OrganizerProfile
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=student organizer"`

	// Student fields.
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
	Level      int    `json:"level"`

	// Organizer fields.
	BusinessName  string `json:"business_name"`
	LicenseNumber string `json:"license_number"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
