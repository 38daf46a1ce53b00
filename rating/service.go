package rating

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ValidationError names a malformed input field.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rating: missing or invalid field %q", e.Field)
}

// SubmitParams is the caller-supplied payload. Identity fields are optional:
// anonymous submissions are allowed.
type SubmitParams struct {
	Rating  int
	Comment string
	Name    string
	Email   string
	Picture string
}

type Service struct {
	repo Repository
	dir  Directory
}

func NewService(repo Repository, dir Directory) *Service {
	return &Service{repo: repo, dir: dir}
}

// Submit stores a new rating. The submitter snapshot is enriched from the
// user directory when the email is known there; directory failures never
// fail the submission. The user-record counter update is best-effort too.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (Rating, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return Rating{}, ValidationError{Field: "rating"}
	}

	rec := Rating{
		ID:          uuid.NewString(),
		Rating:      params.Rating,
		Comment:     strings.TrimSpace(params.Comment),
		UserName:    params.Name,
		UserEmail:   params.Email,
		UserPicture: params.Picture,
		Status:      StatusApproved,
	}
	if rec.UserName == "" {
		rec.UserName = "Anonymous"
	}

	if params.Email != "" {
		if submitter, err := s.dir.FindByEmail(ctx, params.Email); err == nil {
			rec.Subject = submitter.Subject
			rec.IsVerified = submitter.IsVerified
			rec.UserType = submitter.UserType
			if rec.UserName == "Anonymous" && submitter.Name != "" {
				rec.UserName = submitter.Name
			}
			if rec.UserPicture == "" {
				rec.UserPicture = submitter.Picture
			}
		}
	}

	inserted, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return Rating{}, err
	}

	if inserted.Subject != "" {
		if err := s.dir.MarkRated(ctx, inserted.Subject); err != nil {
			log.Printf("rating: counter update for %s failed: %v", inserted.Subject, err)
		}
	}
	return inserted, nil
}

// List returns moderated ratings. Non-admin callers are pinned to the
// approved status at the HTTP layer.
func (s *Service) List(ctx context.Context, filters Filters) (Page, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return Page{}, ValidationError{Field: "status"}
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return Page{}, err
	}
	totalPages := (total + filters.PageSize - 1) / filters.PageSize
	return Page{
		Ratings: list,
		Pagination: Pagination{
			CurrentPage:     filters.Page,
			TotalPages:      totalPages,
			TotalCount:      total,
			HasNextPage:     filters.Page < totalPages,
			HasPreviousPage: filters.Page > 1,
		},
	}, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// TrustStats combines rating and user aggregates, fetched concurrently.
func (s *Service) TrustStats(ctx context.Context) (TrustStats, error) {
	var (
		ratingStats Stats
		userCounts  UserCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ratingStats, err = s.repo.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		userCounts, err = s.dir.Counts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return TrustStats{}, err
	}

	return TrustStats{
		TotalUsers:    userCounts.Total,
		VerifiedUsers: userCounts.Verified,
		TotalRatings:  ratingStats.TotalRatings,
		AverageRating: ratingStats.AverageRating,
	}, nil
}

// PlatformStats is the wider public dashboard aggregate.
func (s *Service) PlatformStats(ctx context.Context) (PlatformStats, error) {
	var (
		ratingStats Stats
		userCounts  UserCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ratingStats, err = s.repo.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		userCounts, err = s.dir.Counts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PlatformStats{}, err
	}

	return PlatformStats{
		TotalUsers:    userCounts.Total,
		VerifiedUsers: userCounts.Verified,
		Owners:        userCounts.Owners,
		Seekers:       userCounts.Seekers,
		TotalRatings:  ratingStats.TotalRatings,
		AverageRating: ratingStats.AverageRating,
		FiveStarCount: ratingStats.Histogram[4],
	}, nil
}

// UserRating returns the latest approved rating submitted under the email.
func (s *Service) UserRating(ctx context.Context, email string) (Rating, error) {
	if strings.TrimSpace(email) == "" {
		return Rating{}, ValidationError{Field: "email"}
	}
	return s.repo.LatestForEmail(ctx, email)
}

func (s *Service) FeaturedTestimonials(ctx context.Context, limit int) ([]Rating, error) {
	return s.repo.FeaturedTestimonials(ctx, limit)
}

// UpdateStatus is the moderation operation; the admin guard sits at the
// HTTP layer.
func (s *Service) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (Rating, error) {
	if id == "" {
		return Rating{}, ValidationError{Field: "id"}
	}
	if update.Status != nil && !update.Status.Valid() {
		return Rating{}, ValidationError{Field: "status"}
	}
	return s.repo.UpdateStatus(ctx, id, update)
}
