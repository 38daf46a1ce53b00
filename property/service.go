package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrForbidden signals a caller acting on a listing they do not own.
	ErrForbidden = errors.New("property: not the owner")
)

// ValidationError names a missing or malformed input field.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("property: missing or invalid field %q", e.Field)
}

// CreateParams is the owner-supplied listing payload. The owner subject
// comes from the verified identity, never from the request body.
type CreateParams struct {
	PropertyType    string
	PropertySubType string
	Title           string
	Description     string
	Address         Address
	NearbyPlaces    NearbyPlaces
	Details         Details
	Amenities       Amenities
	Rules           Rules
	Pricing         Pricing
	Availability    Availability
	Media           []MediaItem
	ContactInfo     ContactInfo
	PublishStatus   PublishStatus
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new listing for the given owner. The promoted filter
// columns are derived from the structured sub-documents at write time.
func (s *Service) Create(ctx context.Context, ownerSubject string, params CreateParams) (Property, error) {
	if ownerSubject == "" {
		return Property{}, ValidationError{Field: "ownerSubject"}
	}
	if strings.TrimSpace(params.Title) == "" {
		return Property{}, ValidationError{Field: "title"}
	}
	if strings.TrimSpace(params.PropertyType) == "" {
		return Property{}, ValidationError{Field: "propertyType"}
	}

	status := params.PublishStatus
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return Property{}, ValidationError{Field: "publishStatus"}
	}

	if params.Media == nil {
		params.Media = []MediaItem{}
	}

	return s.repo.Create(ctx, Property{
		ID:              uuid.NewString(),
		OwnerSubject:    ownerSubject,
		PropertyType:    params.PropertyType,
		PropertySubType: params.PropertySubType,
		Title:           params.Title,
		Description:     params.Description,
		City:            params.Address.City,
		Area:            params.Address.Area,
		Landmark:        params.Address.Landmark,
		Gender:          genderOrBoth(params.Details.Gender),
		Furnishing:      params.Details.Furnishing,
		RentAmount:      params.Pricing.RentAmount,
		Address:         params.Address,
		NearbyPlaces:    params.NearbyPlaces,
		Details:         params.Details,
		Amenities:       params.Amenities,
		Rules:           params.Rules,
		Pricing:         params.Pricing,
		Availability:    params.Availability,
		Media:           params.Media,
		ContactInfo:     params.ContactInfo,
		PublishStatus:   status,
		IsActive:        true,
	})
}

// List serves the public catalog. Only published, active listings are
// returned regardless of the filters supplied.
func (s *Service) List(ctx context.Context, filters Filters) (Page, error) {
	filters.Page, filters.PageSize = clampPage(filters.Page, filters.PageSize, 12)
	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return Page{}, err
	}
	return buildPage(list, total, filters.Page, filters.PageSize), nil
}

// ListByOwner serves an owner's own dashboard, drafts included.
func (s *Service) ListByOwner(ctx context.Context, filters OwnerFilters) (Page, error) {
	if filters.OwnerSubject == "" {
		return Page{}, ValidationError{Field: "ownerSubject"}
	}
	if filters.PublishStatus != "" && !filters.PublishStatus.Valid() {
		return Page{}, ValidationError{Field: "publishStatus"}
	}
	filters.Page, filters.PageSize = clampPage(filters.Page, filters.PageSize, 20)
	list, total, err := s.repo.ListByOwner(ctx, filters)
	if err != nil {
		return Page{}, err
	}
	return buildPage(list, total, filters.Page, filters.PageSize), nil
}

// Get reads one listing and counts the view. The increment rides on the
// read statement itself.
func (s *Service) Get(ctx context.Context, id string) (Property, error) {
	if id == "" {
		return Property{}, ValidationError{Field: "id"}
	}
	return s.repo.GetAndCountView(ctx, id)
}

// Update applies a partial patch after checking the caller owns the listing.
func (s *Service) Update(ctx context.Context, id, callerSubject string, patch Patch) (Property, error) {
	if patch.PublishStatus != nil && !patch.PublishStatus.Valid() {
		return Property{}, ValidationError{Field: "publishStatus"}
	}
	if err := s.checkOwnership(ctx, id, callerSubject); err != nil {
		return Property{}, err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id, callerSubject string) error {
	if err := s.checkOwnership(ctx, id, callerSubject); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToggleActive flips the is_active flag for the caller's listing.
func (s *Service) ToggleActive(ctx context.Context, id, callerSubject string) (Property, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if current.OwnerSubject != callerSubject {
		return Property{}, ErrForbidden
	}
	return s.repo.SetActive(ctx, id, !current.IsActive)
}

// RecordInquiry counts an inquiry. Public action, no ownership check.
func (s *Service) RecordInquiry(ctx context.Context, id string) error {
	if id == "" {
		return ValidationError{Field: "id"}
	}
	return s.repo.RecordInquiry(ctx, id)
}

func (s *Service) Stats(ctx context.Context, ownerSubject string) (Stats, error) {
	if ownerSubject == "" {
		return Stats{}, ValidationError{Field: "ownerSubject"}
	}
	return s.repo.Stats(ctx, ownerSubject)
}

func (s *Service) Featured(ctx context.Context, limit int) ([]Property, error) {
	return s.repo.Featured(ctx, limit)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Property, error) {
	return s.repo.Recent(ctx, limit)
}

// checkOwnership compares the stored owner against the server-verified
// caller subject. The caller never supplies the owner id directly.
func (s *Service) checkOwnership(ctx context.Context, id, callerSubject string) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if callerSubject == "" || current.OwnerSubject != callerSubject {
		return ErrForbidden
	}
	return nil
}

func clampPage(page, pageSize, defaultSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultSize
	}
	return page, pageSize
}

func buildPage(list []Property, total, page, pageSize int) Page {
	totalPages := (total + pageSize - 1) / pageSize
	return Page{
		Properties: list,
		Pagination: Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalCount:      total,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}
