package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Trevolee01/Bui-transport/internal/db"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found for user")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateStudent(ctx context.Context, u *User, p *StudentProfile) (*User, *StudentProfile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var created User
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role)
		VALUES ($1, $2, $3, $4, $5, 'student')
		RETURNING id, email, password_hash, first_name, last_name, phone_number, role, is_verified, created_at, updated_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber).StructScan(&created)
	if err != nil {
		return nil, nil, err
	}

	var profile StudentProfile
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO student_profiles (user_id, student_id, department, level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, student_id, department, level, wallet_balance, created_at, updated_at
	`, created.ID, p.StudentID, p.Department, p.Level).StructScan(&profile)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &created, &profile, nil
}

func (r *repository) CreateOrganizer(ctx context.Context, u *User, p *OrganizerProfile) (*User, *OrganizerProfile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var created User
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role)
		VALUES ($1, $2, $3, $4, $5, 'organizer')
		RETURNING id, email, password_hash, first_name, last_name, phone_number, role, is_verified, created_at, updated_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber).StructScan(&created)
	if err != nil {
		return nil, nil, err
	}

	var profile OrganizerProfile
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO organizer_profiles (user_id, business_name, license_number)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, business_name, license_number, vehicle_count, approval_status, approval_date, created_at, updated_at
	`, created.ID, p.BusinessName, p.LicenseNumber).StructScan(&profile)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return &created, &profile, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone_number, role, is_verified, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone_number, role, is_verified, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) GetStudentProfile(ctx context.Context, userID uuid.UUID) (*StudentProfile, error) {
	query := `
		SELECT id, user_id, student_id, department, level, wallet_balance, created_at, updated_at
		FROM student_profiles
		WHERE user_id = $1
	`

	var p StudentProfile
	err := r.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetStudentProfileByID(ctx context.Context, id uuid.UUID) (*StudentProfile, error) {
	query := `
		SELECT id, user_id, student_id, department, level, wallet_balance, created_at, updated_at
		FROM student_profiles
		WHERE id = $1
	`

	var p StudentProfile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetOrganizerProfile(ctx context.Context, userID uuid.UUID) (*OrganizerProfile, error) {
	query := `
		SELECT id, user_id, business_name, license_number, vehicle_count, approval_status, approval_date, created_at, updated_at
		FROM organizer_profiles
		WHERE user_id = $1
	`

	var p OrganizerProfile
	err := r.db.GetContext(ctx, &p, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetOrganizerProfileByID(ctx context.Context, id uuid.UUID) (*OrganizerProfile, error) {
	query := `
		SELECT id, user_id, business_name, license_number, vehicle_count, approval_status, approval_date, created_at, updated_at
		FROM organizer_profiles
		WHERE id = $1
	`

	var p OrganizerProfile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) SetOrganizerApproval(ctx context.Context, organizerID uuid.UUID, status string, decidedAt time.Time) (*OrganizerProfile, error) {
	query := `
		UPDATE organizer_profiles
		SET approval_status = $1, approval_date = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, user_id, business_name, license_number, vehicle_count, approval_status, approval_date, created_at, updated_at
	`

	var p OrganizerProfile
	err := r.db.QueryRowxContext(ctx, query, status, decidedAt, organizerID).StructScan(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListPendingOrganizers(ctx context.Context) ([]OrganizerProfile, error) {
	query := `
		SELECT id, user_id, business_name, license_number, vehicle_count, approval_status, approval_date, created_at, updated_at
		FROM organizer_profiles
		WHERE approval_status = 'pending'
		ORDER BY created_at ASC
	`

	var profiles []OrganizerProfile
	err := r.db.SelectContext(ctx, &profiles, query)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}
