package flatmate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentmate/user"
)

// PGRepository implements Repository over the users table.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const candidateColumns = `subject, name, email, picture, phone, address, bio, social_media, user_type, created_at`

func (r *PGRepository) Requester(ctx context.Context, subject string) (user.User, error) {
	const query = `
		SELECT subject, name, email, picture, phone, address, bio, social_media, user_type, created_at
		FROM users
		WHERE subject = $1
	`
	u, err := scanCandidate(r.pool.QueryRow(ctx, query, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("flatmate: load requester: %w", err)
	}
	return u, nil
}

func (r *PGRepository) Candidates(ctx context.Context, q Query) ([]user.User, int, error) {
	where := "subject <> $1 AND bio <> ''"
	args := []any{q.ExcludeSubject}

	switch q.Strategy.Kind {
	case ByKeyword:
		where += fmt.Sprintf(" AND bio ~* $%d", len(args)+1)
		args = append(args, q.Strategy.Pattern())
	default:
		where += " AND (user_type = 'LOOKING_FOR_PG' OR user_type IS NULL)"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM users WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("flatmate: count candidates: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		candidateColumns, where, q.PageSize, (q.Page-1)*q.PageSize,
	)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("flatmate: query candidates: %w", err)
	}
	defer rows.Close()

	out := make([]user.User, 0, q.PageSize)
	for rows.Next() {
		u, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("flatmate: scan candidate: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("flatmate: iterate candidates: %w", err)
	}

	return out, total, nil
}

func scanCandidate(row pgx.Row) (user.User, error) {
	var (
		u        user.User
		userType *string
	)
	err := row.Scan(
		&u.Subject,
		&u.Name,
		&u.Email,
		&u.Picture,
		&u.Phone,
		&u.Address,
		&u.Bio,
		&u.SocialMedia,
		&userType,
		&u.CreatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	if userType != nil {
		u.UserType = user.UserType(*userType)
	}
	return u, nil
}
