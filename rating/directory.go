package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var errSubmitterUnknown = errors.New("rating: submitter not found")

// Submitter is the user snapshot captured onto a rating at write time.
type Submitter struct {
	Name       string
	Subject    string
	Picture    string
	IsVerified bool
	UserType   string
}

// UserCounts are the user-side aggregates feeding trust/platform stats.
type UserCounts struct {
	Total    int64
	Verified int64
	Owners   int64
	Seekers  int64
}

// Directory looks up submitter details and records rating activity on the
// user record. Both are best-effort from the service's point of view.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (Submitter, error)
	MarkRated(ctx context.Context, subject string) error
	Counts(ctx context.Context) (UserCounts, error)
}

type PGDirectory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

func (d *PGDirectory) FindByEmail(ctx context.Context, email string) (Submitter, error) {
	const query = `
        SELECT name, subject, picture, is_verified, COALESCE(user_type, '')
        FROM users WHERE email = $1
        ORDER BY created_at ASC LIMIT 1`

	var s Submitter
	err := d.pool.QueryRow(ctx, query, email).Scan(&s.Name, &s.Subject, &s.Picture, &s.IsVerified, &s.UserType)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submitter{}, errSubmitterUnknown
	}
	if err != nil {
		return Submitter{}, fmt.Errorf("rating: find submitter: %w", err)
	}
	return s, nil
}

func (d *PGDirectory) MarkRated(ctx context.Context, subject string) error {
	const query = `
        UPDATE users SET ratings_count = ratings_count + 1, has_submitted_rating = true, updated_at = now()
        WHERE subject = $1`
	tag, err := d.pool.Exec(ctx, query, subject)
	if err != nil {
		return fmt.Errorf("rating: mark rated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errSubmitterUnknown
	}
	return nil
}

func (d *PGDirectory) Counts(ctx context.Context) (UserCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_verified),
               COUNT(*) FILTER (WHERE user_type IN ('PG_OWNER', 'FLAT_OWNER')),
               COUNT(*) FILTER (WHERE user_type = 'LOOKING_FOR_PG')
        FROM users`

	var c UserCounts
	if err := d.pool.QueryRow(ctx, query).Scan(&c.Total, &c.Verified, &c.Owners, &c.Seekers); err != nil {
		return UserCounts{}, fmt.Errorf("rating: user counts: %w", err)
	}
	return c, nil
}
