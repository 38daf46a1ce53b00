package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that no user exists for the given subject or id.
	ErrNotFound = errors.New("user: not found")
	// ErrDuplicateSubject signals the external subject is already registered.
	ErrDuplicateSubject = errors.New("user: subject already exists")
)

const userColumns = `id, subject, name, email, picture, phone, address, bio, social_media,
		user_type, verification_status, is_verified, verification_data, admin_notes,
		submitted_at, reviewed_at, approved_at, ratings_count, has_submitted_rating,
		created_at, updated_at`

// CreateParams contains the identity-provider fields stored on first sight.
type CreateParams struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// IdentityUpdate carries the mutable identity fields refreshed on login.
// Empty strings leave the stored value untouched.
type IdentityUpdate struct {
	Name    string
	Email   string
	Picture string
}

// ProfileUpdate carries the user-editable fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Phone       *string
	Address     *string
	Bio         *string
	SocialMedia *SocialMedia
}

// VerificationWrite applies a verification state transition. The repository
// derives is_verified from Status so the invariant
// is_verified == Status.Approved() holds after every write.
type VerificationWrite struct {
	UserType UserType           // empty keeps the stored type
	Data     *VerificationData  // nil keeps the stored document
	Status   VerificationStatus // required
	At       time.Time
}

// Repository handles data access for user accounts.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetBySubject(ctx context.Context, subject string) (User, error)
	GetBySubjectOrID(ctx context.Context, id string) (User, error)
	UpdateIdentity(ctx context.Context, subject string, update IdentityUpdate) (User, error)
	UpdateProfile(ctx context.Context, subject string, update ProfileUpdate) (User, error)
	ApplyVerification(ctx context.Context, subject string, write VerificationWrite) (User, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (User, error) {
	const insertSQL = `
		INSERT INTO users (subject, name, email, picture)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, insertSQL, params.Subject, params.Name, params.Email, params.Picture))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateSubject
		}
		return User{}, fmt.Errorf("user: create: %w", err)
	}
	return u, nil
}

func (r *PGRepository) GetBySubject(ctx context.Context, subject string) (User, error) {
	const selectSQL = `SELECT ` + userColumns + ` FROM users WHERE subject = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, selectSQL, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: get by subject: %w", err)
	}
	return u, nil
}

// GetBySubjectOrID resolves either the external subject or the internal row
// id; public profile routes accept both.
func (r *PGRepository) GetBySubjectOrID(ctx context.Context, id string) (User, error) {
	const selectSQL = `
		SELECT ` + userColumns + `
		FROM users
		WHERE subject = $1 OR id::text = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: get by subject or id: %w", err)
	}
	return u, nil
}

func (r *PGRepository) UpdateIdentity(ctx context.Context, subject string, update IdentityUpdate) (User, error) {
	const updateSQL = `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    email = COALESCE(NULLIF($3, ''), email),
		    picture = COALESCE(NULLIF($4, ''), picture),
		    updated_at = now()
		WHERE subject = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, updateSQL, subject, update.Name, update.Email, update.Picture))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: update identity: %w", err)
	}
	return u, nil
}

func (r *PGRepository) UpdateProfile(ctx context.Context, subject string, update ProfileUpdate) (User, error) {
	const updateSQL = `
		UPDATE users
		SET phone = COALESCE($2, phone),
		    address = COALESCE($3, address),
		    bio = COALESCE($4, bio),
		    social_media = COALESCE($5, social_media),
		    updated_at = now()
		WHERE subject = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, updateSQL, subject, update.Phone, update.Address, update.Bio, update.SocialMedia))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: update profile: %w", err)
	}
	return u, nil
}

func (r *PGRepository) ApplyVerification(ctx context.Context, subject string, write VerificationWrite) (User, error) {
	var userType *string
	if write.UserType != "" {
		s := string(write.UserType)
		userType = &s
	}

	isVerified := write.Status.Approved()

	const updateSQL = `
		UPDATE users
		SET user_type = COALESCE($2, user_type),
		    verification_data = COALESCE($3, verification_data),
		    verification_status = $4,
		    is_verified = $5,
		    submitted_at = COALESCE(submitted_at, $6),
		    reviewed_at = $6,
		    approved_at = CASE WHEN $5 THEN $6 ELSE approved_at END,
		    updated_at = now()
		WHERE subject = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, updateSQL, subject, userType, write.Data, write.Status, isVerified, write.At))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("user: apply verification: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u        User
		userType *string
	)
	err := row.Scan(
		&u.ID,
		&u.Subject,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.Phone,
		&u.Address,
		&u.Bio,
		&u.SocialMedia,
		&userType,
		&u.VerificationStatus,
		&u.IsVerified,
		&u.VerificationData,
		&u.AdminNotes,
		&u.SubmittedAt,
		&u.ReviewedAt,
		&u.ApprovedAt,
		&u.RatingsCount,
		&u.HasSubmittedRating,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}

	if userType != nil {
		u.UserType = UserType(*userType)
	}
	return u, nil
}
