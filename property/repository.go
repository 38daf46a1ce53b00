package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("property: not found")

// Filters is the public catalog query. Zero values mean "no constraint".
type Filters struct {
	City         string
	Area         string
	PropertyType string
	Gender       string
	Furnishing   string
	MinRent      int64
	MaxRent      int64
	Search       string
	Page         int
	PageSize     int
	Sort         string
}

// OwnerFilters scopes a listing query to one owner, optionally by status.
type OwnerFilters struct {
	OwnerSubject  string
	PublishStatus PublishStatus
	Page          int
	PageSize      int
}

// Patch carries partial-update fields. Nil pointers leave the stored value
// untouched.
type Patch struct {
	PropertyType    *string
	PropertySubType *string
	Title           *string
	Description     *string
	Address         *Address
	NearbyPlaces    *NearbyPlaces
	Details         *Details
	Amenities       *Amenities
	Rules           *Rules
	Pricing         *Pricing
	Availability    *Availability
	Media           *[]MediaItem
	ContactInfo     *ContactInfo
	PublishStatus   *PublishStatus
}

type Repository interface {
	Create(ctx context.Context, p Property) (Property, error)
	List(ctx context.Context, filters Filters) ([]Property, int, error)
	ListByOwner(ctx context.Context, filters OwnerFilters) ([]Property, int, error)
	GetAndCountView(ctx context.Context, id string) (Property, error)
	Get(ctx context.Context, id string) (Property, error)
	Update(ctx context.Context, id string, patch Patch) (Property, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (Property, error)
	RecordInquiry(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerSubject string) (Stats, error)
	Featured(ctx context.Context, limit int) ([]Property, error)
	Recent(ctx context.Context, limit int) ([]Property, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const propertyColumns = `id, owner_subject, property_type, property_sub_type, title, description,
    city, area, landmark, gender, furnishing, rent_amount,
    address, nearby_places, details, amenities, rules, pricing, availability, media, contact_info,
    publish_status, is_active, verified, featured, views, inquiries, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, p Property) (Property, error) {
	query := fmt.Sprintf(`
        INSERT INTO properties (id, owner_subject, property_type, property_sub_type, title, description,
            city, area, landmark, gender, furnishing, rent_amount,
            address, nearby_places, details, amenities, rules, pricing, availability, media, contact_info,
            publish_status, is_active)
        VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11, $12,
            $13, $14, $15, $16, $17, $18, $19, $20, $21,
            $22, $23)
        RETURNING %s`, propertyColumns)

	row := r.pool.QueryRow(ctx, query,
		p.ID,
		p.OwnerSubject,
		p.PropertyType,
		p.PropertySubType,
		p.Title,
		p.Description,
		p.City,
		p.Area,
		p.Landmark,
		p.Gender,
		p.Furnishing,
		p.RentAmount,
		p.Address,
		p.NearbyPlaces,
		p.Details,
		p.Amenities,
		p.Rules,
		p.Pricing,
		p.Availability,
		p.Media,
		p.ContactInfo,
		p.PublishStatus,
		p.IsActive,
	)
	created, err := scanProperty(row)
	if err != nil {
		return Property{}, fmt.Errorf("property: create: %w", err)
	}
	return created, nil
}

func (r *PGRepository) List(ctx context.Context, filters Filters) ([]Property, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 12
	}

	// Public path: only published, active listings are discoverable.
	where := []string{"publish_status = 'published'", "is_active = true"}
	args := []any{}

	if filters.City != "" {
		where = append(where, fmt.Sprintf("city ILIKE $%d", len(args)+1))
		args = append(args, "%"+filters.City+"%")
	}
	if filters.Area != "" {
		where = append(where, fmt.Sprintf("area ILIKE $%d", len(args)+1))
		args = append(args, "%"+filters.Area+"%")
	}
	if filters.PropertyType != "" {
		where = append(where, fmt.Sprintf("property_type=$%d", len(args)+1))
		args = append(args, filters.PropertyType)
	}
	if filters.Gender != "" {
		where = append(where, fmt.Sprintf("(gender=$%d OR gender='Both')", len(args)+1))
		args = append(args, filters.Gender)
	}
	if filters.Furnishing != "" {
		where = append(where, fmt.Sprintf("furnishing=$%d", len(args)+1))
		args = append(args, filters.Furnishing)
	}
	if filters.MinRent > 0 {
		where = append(where, fmt.Sprintf("rent_amount >= $%d", len(args)+1))
		args = append(args, filters.MinRent)
	}
	if filters.MaxRent > 0 {
		where = append(where, fmt.Sprintf("rent_amount <= $%d", len(args)+1))
		args = append(args, filters.MaxRent)
	}
	if filters.Search != "" {
		n := len(args) + 1
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR city ILIKE $%d OR area ILIKE $%d OR landmark ILIKE $%d)",
			n, n, n, n, n))
		args = append(args, "%"+filters.Search+"%")
	}

	whereClause := " WHERE " + strings.Join(where, " AND ")
	orderBy := mapSortKey(filters.Sort)
	limit := filters.PageSize
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`SELECT %s FROM properties%s ORDER BY %s LIMIT %d OFFSET %d`,
		propertyColumns, whereClause, orderBy, limit, offset)
	list, err := r.queryProperties(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("property: query list: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties%s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("property: count list: %w", err)
	}
	return list, total, nil
}

func mapSortKey(sort string) string {
	switch sort {
	case "rent_low":
		return "rent_amount ASC"
	case "rent_high":
		return "rent_amount DESC"
	case "popular":
		return "views DESC"
	default:
		return "created_at DESC"
	}
}

func (r *PGRepository) ListByOwner(ctx context.Context, filters OwnerFilters) ([]Property, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	where := []string{"owner_subject=$1"}
	args := []any{filters.OwnerSubject}
	if filters.PublishStatus != "" {
		where = append(where, fmt.Sprintf("publish_status=$%d", len(args)+1))
		args = append(args, filters.PublishStatus)
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	query := fmt.Sprintf(`SELECT %s FROM properties%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		propertyColumns, whereClause, filters.PageSize, (filters.Page-1)*filters.PageSize)
	list, err := r.queryProperties(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("property: query owner list: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties%s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("property: count owner list: %w", err)
	}
	return list, total, nil
}

// GetAndCountView reads one listing and counts the view in the same
// statement, so concurrent reads never lose increments.
func (r *PGRepository) GetAndCountView(ctx context.Context, id string) (Property, error) {
	query := fmt.Sprintf(`
        UPDATE properties SET views = views + 1
        WHERE id = $1
        RETURNING %s`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("property: get with view: %w", err)
	}
	return p, nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("property: get: %w", err)
	}
	return p, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, patch Patch) (Property, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}

	add := func(col string, val any) {
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)+1))
		args = append(args, val)
	}

	if patch.PropertyType != nil {
		add("property_type", *patch.PropertyType)
	}
	if patch.PropertySubType != nil {
		add("property_sub_type", *patch.PropertySubType)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
		add("city", patch.Address.City)
		add("area", patch.Address.Area)
		add("landmark", patch.Address.Landmark)
	}
	if patch.NearbyPlaces != nil {
		add("nearby_places", *patch.NearbyPlaces)
	}
	if patch.Details != nil {
		add("details", *patch.Details)
		add("gender", genderOrBoth(patch.Details.Gender))
		add("furnishing", patch.Details.Furnishing)
	}
	if patch.Amenities != nil {
		add("amenities", *patch.Amenities)
	}
	if patch.Rules != nil {
		add("rules", *patch.Rules)
	}
	if patch.Pricing != nil {
		add("pricing", *patch.Pricing)
		add("rent_amount", patch.Pricing.RentAmount)
	}
	if patch.Availability != nil {
		add("availability", *patch.Availability)
	}
	if patch.Media != nil {
		add("media", *patch.Media)
	}
	if patch.ContactInfo != nil {
		add("contact_info", *patch.ContactInfo)
	}
	if patch.PublishStatus != nil {
		add("publish_status", *patch.PublishStatus)
	}

	query := fmt.Sprintf(`UPDATE properties SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("property: update: %w", err)
	}
	return p, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("property: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, id string, active bool) (Property, error) {
	query := fmt.Sprintf(`
        UPDATE properties SET is_active = $2, updated_at = now()
        WHERE id = $1
        RETURNING %s`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("property: set active: %w", err)
	}
	return p, nil
}

func (r *PGRepository) RecordInquiry(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE properties SET inquiries = inquiries + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("property: record inquiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) Stats(ctx context.Context, ownerSubject string) (Stats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE publish_status = 'published'),
               COUNT(*) FILTER (WHERE publish_status = 'draft'),
               COALESCE(SUM(views), 0),
               COALESCE(SUM(inquiries), 0),
               COALESCE(AVG(rent_amount), 0)
        FROM properties
        WHERE owner_subject = $1`

	var s Stats
	err := r.pool.QueryRow(ctx, query, ownerSubject).Scan(
		&s.TotalProperties,
		&s.Published,
		&s.Drafts,
		&s.TotalViews,
		&s.TotalInquiries,
		&s.AverageRent,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("property: stats: %w", err)
	}
	return s, nil
}

func (r *PGRepository) Featured(ctx context.Context, limit int) ([]Property, error) {
	if limit <= 0 || limit > 50 {
		limit = 6
	}
	query := fmt.Sprintf(`SELECT %s FROM properties
        WHERE publish_status = 'published' AND is_active = true AND featured = true
        ORDER BY created_at DESC LIMIT %d`, propertyColumns, limit)
	list, err := r.queryProperties(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("property: query featured: %w", err)
	}
	return list, nil
}

func (r *PGRepository) Recent(ctx context.Context, limit int) ([]Property, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}
	query := fmt.Sprintf(`SELECT %s FROM properties
        WHERE publish_status = 'published' AND is_active = true
        ORDER BY created_at DESC LIMIT %d`, propertyColumns, limit)
	list, err := r.queryProperties(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("property: query recent: %w", err)
	}
	return list, nil
}

func (r *PGRepository) queryProperties(ctx context.Context, query string, args ...any) ([]Property, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func genderOrBoth(gender string) string {
	if gender == "" {
		return "Both"
	}
	return gender
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(
		&p.ID,
		&p.OwnerSubject,
		&p.PropertyType,
		&p.PropertySubType,
		&p.Title,
		&p.Description,
		&p.City,
		&p.Area,
		&p.Landmark,
		&p.Gender,
		&p.Furnishing,
		&p.RentAmount,
		&p.Address,
		&p.NearbyPlaces,
		&p.Details,
		&p.Amenities,
		&p.Rules,
		&p.Pricing,
		&p.Availability,
		&p.Media,
		&p.ContactInfo,
		&p.PublishStatus,
		&p.IsActive,
		&p.Verified,
		&p.Featured,
		&p.Views,
		&p.Inquiries,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
