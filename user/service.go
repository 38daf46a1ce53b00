package user

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service handles the identity bridge and profile operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BridgeParams carries the verified identity-provider fields for a session.
type BridgeParams struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// BridgeResult reports what the identity bridge did for this login.
type BridgeResult struct {
	User              User
	NeedsVerification bool
	IsExistingUser    bool
}

// CreateOrUpdate maps an external identity onto the local user record:
// created on first sight, mutable identity fields refreshed on every login.
func (s *Service) CreateOrUpdate(ctx context.Context, params BridgeParams) (BridgeResult, error) {
	if params.Subject == "" {
		return BridgeResult{}, fmt.Errorf("user: missing subject")
	}

	_, err := s.repo.GetBySubject(ctx, params.Subject)
	if err == nil {
		updated, err := s.repo.UpdateIdentity(ctx, params.Subject, IdentityUpdate{
			Name:    params.Name,
			Email:   params.Email,
			Picture: params.Picture,
		})
		if err != nil {
			return BridgeResult{}, err
		}
		return BridgeResult{
			User:              updated,
			NeedsVerification: updated.UserType == "" || !updated.IsVerified,
			IsExistingUser:    true,
		}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return BridgeResult{}, err
	}

	created, err := s.repo.Create(ctx, CreateParams{
		Subject: params.Subject,
		Name:    params.Name,
		Email:   params.Email,
		Picture: params.Picture,
	})
	if err != nil {
		// A concurrent first login can win the insert race; fall back to the
		// update path so both calls succeed.
		if errors.Is(err, ErrDuplicateSubject) {
			return s.CreateOrUpdate(ctx, params)
		}
		return BridgeResult{}, err
	}

	return BridgeResult{
		User:              created,
		NeedsVerification: true,
		IsExistingUser:    false,
	}, nil
}

// Profile bundles a user with the derived strict completeness flag.
type Profile struct {
	User              User
	IsProfileComplete bool
}

func (s *Service) Get(ctx context.Context, subject string) (Profile, error) {
	u, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, IsProfileComplete: IsProfileComplete(u)}, nil
}

// UpdateProfile mutates the editable fields only; identity and verification
// fields are never touched through this path.
func (s *Service) UpdateProfile(ctx context.Context, subject string, update ProfileUpdate) (Profile, error) {
	u, err := s.repo.UpdateProfile(ctx, subject, update)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, IsProfileComplete: IsProfileComplete(u)}, nil
}

// PublicDetails is the field subset exposed on public profile pages.
type PublicDetails struct {
	ID                string
	Subject           string
	Name              string
	Email             string
	Picture           string
	Bio               string
	Address           string
	Phone             string
	SocialMedia       SocialMedia
	UserType          UserType
	IsVerified        bool
	MemberSince       time.Time
	CompletionPercent int
}

// Details resolves a public profile by subject or internal id.
func (s *Service) Details(ctx context.Context, id string) (PublicDetails, error) {
	u, err := s.repo.GetBySubjectOrID(ctx, id)
	if err != nil {
		return PublicDetails{}, err
	}

	return PublicDetails{
		ID:                u.ID,
		Subject:           u.Subject,
		Name:              u.Name,
		Email:             u.Email,
		Picture:           u.Picture,
		Bio:               u.Bio,
		Address:           u.Address,
		Phone:             u.Phone,
		SocialMedia:       u.SocialMedia,
		UserType:          u.UserType,
		IsVerified:        u.IsVerified,
		MemberSince:       u.CreatedAt,
		CompletionPercent: CompletionPercent(u),
	}, nil
}
