package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyApproved signals a resubmission while the verification is in
	// the terminal APPROVED state; the stored record is left untouched.
	ErrAlreadyApproved = errors.New("user: verification already approved")
)

// MissingFieldError names the required verification field that was empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("user: missing required field %q", e.Field)
}

// SubmitVerificationParams is the full submission payload.
type SubmitVerificationParams struct {
	UserType UserType
	Data     VerificationData
}

// SubmitVerification drives the UNVERIFIED/TYPE_CHOSEN -> APPROVED transition.
// Every well-formed submission is approved immediately: this system is
// self-certification, not human review. submitted_at is stamped once,
// approved_at on every successful submission.
func (s *Service) SubmitVerification(ctx context.Context, subject string, params SubmitVerificationParams) (User, error) {
	if params.UserType == "" {
		return User{}, &MissingFieldError{Field: "userType"}
	}
	if !params.UserType.Valid() {
		return User{}, fmt.Errorf("user: invalid user type %q", params.UserType)
	}
	if err := validateVerificationData(params.Data); err != nil {
		return User{}, err
	}

	current, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return User{}, err
	}
	if current.IsVerified && current.VerificationStatus == StatusApproved {
		return User{}, ErrAlreadyApproved
	}

	data := params.Data
	updated, err := s.repo.ApplyVerification(ctx, subject, VerificationWrite{
		UserType: params.UserType,
		Data:     &data,
		Status:   StatusApproved,
		At:       s.now(),
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// ForceApprove unconditionally approves a user, backfilling submitted_at if
// absent. Exposed only behind the admin guard.
func (s *Service) ForceApprove(ctx context.Context, subject string) (User, error) {
	if _, err := s.repo.GetBySubject(ctx, subject); err != nil {
		return User{}, err
	}

	return s.repo.ApplyVerification(ctx, subject, VerificationWrite{
		Status: StatusApproved,
		At:     s.now(),
	})
}

// OwnerAccess is the full result of the owner-capability authorization check.
type OwnerAccess struct {
	CanAccess                bool
	UserType                 UserType
	IsVerified               bool
	VerificationStatus       VerificationStatus
	HasCompletedVerification bool
	IsOwnerType              bool
}

// CheckOwnerAccess is the single gate consulted before exposing property
// management. It is recomputed from storage on every call; verification
// state can change between requests, so the result is never cached.
func (s *Service) CheckOwnerAccess(ctx context.Context, subject string) (OwnerAccess, error) {
	u, err := s.repo.GetBySubject(ctx, subject)
	if err != nil {
		return OwnerAccess{}, err
	}
	return ownerAccess(u), nil
}

func ownerAccess(u User) OwnerAccess {
	hasCompleted := u.UserType != "" && u.VerificationData != nil
	isOwnerType := u.UserType.IsOwner()
	isApproved := u.VerificationStatus.Approved()

	return OwnerAccess{
		CanAccess:                hasCompleted && u.IsVerified && isApproved && isOwnerType,
		UserType:                 u.UserType,
		IsVerified:               u.IsVerified,
		VerificationStatus:       u.VerificationStatus,
		HasCompletedVerification: hasCompleted,
		IsOwnerType:              isOwnerType,
	}
}

// validateVerificationData checks the six required fields and reports the
// first missing one by name.
func validateVerificationData(data VerificationData) error {
	checks := []struct {
		field string
		value string
	}{
		{"fullName", data.FullName},
		{"phoneNumber", data.PhoneNumber},
		{"address.street", data.Address.Street},
		{"address.city", data.Address.City},
		{"emergencyContact.name", data.EmergencyContact.Name},
		{"emergencyContact.phone", data.EmergencyContact.Phone},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return &MissingFieldError{Field: c.field}
		}
	}
	return nil
}
