package flatmate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentmate/user"
)

var (
	// ErrProfileIncomplete signals the requester has not passed the strict
	// profile-completeness gate required to browse flatmates.
	ErrProfileIncomplete = errors.New("flatmate: profile incomplete")
	// ErrRequesterNotFound signals an unknown requesting user.
	ErrRequesterNotFound = errors.New("flatmate: requester not found")
)

// StrategyKind selects how candidates are matched. The two historical
// near-duplicate code paths (userType-based browsing vs bio-keyword search)
// are unified behind this tag.
type StrategyKind int

const (
	// ByUserType matches seekers: LOOKING_FOR_PG or no type chosen yet.
	ByUserType StrategyKind = iota
	// ByKeyword matches a case-insensitive regex against candidate bios.
	ByKeyword
)

// Strategy is the tagged matching variant. Keywords only applies to
// ByKeyword; empty keywords fall back to the default flatmate phrase list.
type Strategy struct {
	Kind     StrategyKind
	Keywords string
}

// defaultPhrases are the bio patterns that indicate someone is hunting for
// a flatmate, used when a keyword search supplies no terms of its own.
var defaultPhrases = []string{
	"searching.*pg",
	"searching.*flatmate",
	"looking.*flatmate",
	"need.*roommate",
	"sharing.*flat",
	"searching.*roommate",
	"looking.*pg",
	"flat.*mate",
	"room.*mate",
	"need.*pg",
	"want.*flatmate",
}

// Pattern renders the strategy's bio regex. For ByUserType it is empty:
// that variant filters on the user_type column instead.
func (s Strategy) Pattern() string {
	if s.Kind != ByKeyword {
		return ""
	}
	keywords := strings.TrimSpace(s.Keywords)
	if keywords == "" {
		return strings.Join(defaultPhrases, "|")
	}

	parts := strings.Split(keywords, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return strings.Join(defaultPhrases, "|")
	}
	return strings.Join(cleaned, "|")
}

// Query is the repository-level candidate filter.
type Query struct {
	ExcludeSubject string
	Strategy       Strategy
	Page           int
	PageSize       int
}

// Repository loads the requester and candidate users from storage.
type Repository interface {
	Requester(ctx context.Context, subject string) (user.User, error)
	Candidates(ctx context.Context, q Query) ([]user.User, int, error)
}

// Pagination describes an offset-paginated result window.
type Pagination struct {
	CurrentPage     int
	TotalPages      int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Result is a page of matched candidates. Candidates whose own profile is
// incomplete are filtered out after the storage query.
type Result struct {
	Flatmates  []user.User
	Pagination Pagination
}

// Service runs flatmate matching gated on the requester's completeness.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search finds candidate flatmates for the requester. The requester must
// pass the strict completeness gate; candidates are matched per the
// strategy, checked for a bio at the storage level, then re-checked for
// full profile completeness before inclusion.
func (s *Service) Search(ctx context.Context, requesterSubject string, strategy Strategy, page, pageSize int) (Result, error) {
	if requesterSubject == "" {
		return Result{}, fmt.Errorf("flatmate: missing requester subject")
	}

	requester, err := s.repo.Requester(ctx, requesterSubject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Result{}, ErrRequesterNotFound
		}
		return Result{}, err
	}
	if !user.IsProfileComplete(requester) {
		return Result{}, ErrProfileIncomplete
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 10
	}

	candidates, total, err := s.repo.Candidates(ctx, Query{
		ExcludeSubject: requesterSubject,
		Strategy:       strategy,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return Result{}, err
	}

	matched := make([]user.User, 0, len(candidates))
	for _, c := range candidates {
		if user.IsProfileComplete(c) {
			matched = append(matched, c)
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	return Result{
		Flatmates: matched,
		Pagination: Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalCount:      total,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}, nil
}
