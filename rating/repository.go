package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("rating: not found")

// Filters is the public listing query.
type Filters struct {
	Status       Status
	MinRating    int
	FeaturedOnly bool
	Sort         string
	Page         int
	PageSize     int
}

// StatusUpdate is the moderation patch. Nil pointers keep the stored value.
type StatusUpdate struct {
	Status     *Status
	IsFeatured *bool
}

type Repository interface {
	Insert(ctx context.Context, r Rating) (Rating, error)
	List(ctx context.Context, filters Filters) ([]Rating, int, error)
	Stats(ctx context.Context) (Stats, error)
	LatestForEmail(ctx context.Context, email string) (Rating, error)
	FeaturedTestimonials(ctx context.Context, limit int) ([]Rating, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (Rating, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const ratingColumns = `id, rating, comment, user_name, user_email, subject, user_picture,
    is_verified, COALESCE(user_type, ''), is_featured, status, created_at`

func (r *PGRepository) Insert(ctx context.Context, rec Rating) (Rating, error) {
	query := fmt.Sprintf(`
        INSERT INTO ratings (id, rating, comment, user_name, user_email, subject, user_picture,
            is_verified, user_type, status)
        VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
        RETURNING %s`, ratingColumns)

	row := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.Rating,
		rec.Comment,
		rec.UserName,
		rec.UserEmail,
		rec.Subject,
		rec.UserPicture,
		rec.IsVerified,
		rec.UserType,
		rec.Status,
	)
	inserted, err := scanRating(row)
	if err != nil {
		return Rating{}, fmt.Errorf("rating: insert: %w", err)
	}
	return inserted, nil
}

func (r *PGRepository) List(ctx context.Context, filters Filters) ([]Rating, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	where := []string{"1=1"}
	args := []any{}

	status := filters.Status
	if status == "" {
		status = StatusApproved
	}
	where = append(where, fmt.Sprintf("status=$%d", len(args)+1))
	args = append(args, status)

	if filters.MinRating > 0 {
		where = append(where, fmt.Sprintf("rating >= $%d", len(args)+1))
		args = append(args, filters.MinRating)
	}
	if filters.FeaturedOnly {
		where = append(where, "is_featured = true")
	}

	whereClause := " WHERE " + strings.Join(where, " AND ")
	orderBy := mapSortKey(filters.Sort)
	limit := filters.PageSize
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM ratings%s ORDER BY %s LIMIT %d OFFSET %d`,
		ratingColumns, whereClause, orderBy, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("rating: query list: %w", err)
	}
	defer rows.Close()

	list := []Rating{}
	for rows.Next() {
		rec, err := scanRating(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rating: iterate list: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ratings%s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("rating: count list: %w", err)
	}
	return list, total, nil
}

func mapSortKey(sort string) string {
	switch sort {
	case "highest":
		return "rating DESC, created_at DESC"
	case "lowest":
		return "rating ASC, created_at DESC"
	case "featured":
		return "is_featured DESC, rating DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (r *PGRepository) Stats(ctx context.Context) (Stats, error) {
	const query = `
        SELECT COUNT(*),
               COALESCE(AVG(rating), 0),
               COUNT(*) FILTER (WHERE rating = 1),
               COUNT(*) FILTER (WHERE rating = 2),
               COUNT(*) FILTER (WHERE rating = 3),
               COUNT(*) FILTER (WHERE rating = 4),
               COUNT(*) FILTER (WHERE rating = 5),
               COUNT(*) FILTER (WHERE is_verified)
        FROM ratings
        WHERE status = 'approved'`

	var s Stats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalRatings,
		&s.AverageRating,
		&s.Histogram[0],
		&s.Histogram[1],
		&s.Histogram[2],
		&s.Histogram[3],
		&s.Histogram[4],
		&s.VerifiedCount,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("rating: stats: %w", err)
	}
	s.AverageRating = roundToOneDecimal(s.AverageRating)
	return s, nil
}

func (r *PGRepository) LatestForEmail(ctx context.Context, email string) (Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings
        WHERE user_email = $1 AND status = 'approved'
        ORDER BY created_at DESC LIMIT 1`, ratingColumns)
	rec, err := scanRating(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rating{}, ErrNotFound
	}
	if err != nil {
		return Rating{}, fmt.Errorf("rating: latest for email: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) FeaturedTestimonials(ctx context.Context, limit int) ([]Rating, error) {
	if limit <= 0 || limit > 50 {
		limit = 6
	}
	query := fmt.Sprintf(`SELECT %s FROM ratings
        WHERE status = 'approved' AND comment <> ''
          AND (is_featured = true OR rating = 5 OR is_verified = true)
        ORDER BY is_featured DESC, rating DESC, created_at DESC
        LIMIT %d`, ratingColumns, limit)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rating: query testimonials: %w", err)
	}
	defer rows.Close()

	list := []Rating{}
	for rows.Next() {
		rec, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (Rating, error) {
	set := []string{}
	args := []any{id}
	if update.Status != nil {
		set = append(set, fmt.Sprintf("status=$%d", len(args)+1))
		args = append(args, *update.Status)
	}
	if update.IsFeatured != nil {
		set = append(set, fmt.Sprintf("is_featured=$%d", len(args)+1))
		args = append(args, *update.IsFeatured)
	}
	if len(set) == 0 {
		return r.get(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE ratings SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), ratingColumns)
	rec, err := scanRating(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rating{}, ErrNotFound
	}
	if err != nil {
		return Rating{}, fmt.Errorf("rating: update status: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) get(ctx context.Context, id string) (Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE id = $1`, ratingColumns)
	rec, err := scanRating(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Rating{}, ErrNotFound
	}
	if err != nil {
		return Rating{}, fmt.Errorf("rating: get: %w", err)
	}
	return rec, nil
}

func roundToOneDecimal(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func scanRating(row pgx.Row) (Rating, error) {
	var rec Rating
	err := row.Scan(
		&rec.ID,
		&rec.Rating,
		&rec.Comment,
		&rec.UserName,
		&rec.UserEmail,
		&rec.Subject,
		&rec.UserPicture,
		&rec.IsVerified,
		&rec.UserType,
		&rec.IsFeatured,
		&rec.Status,
		&rec.CreatedAt,
	)
	return rec, err
}
