package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"rentmate/flatmate"
	"rentmate/identity"
	"rentmate/property"
	"rentmate/rating"
	"rentmate/user"
)

type userService interface {
	CreateOrUpdate(ctx context.Context, params user.BridgeParams) (user.BridgeResult, error)
	Get(ctx context.Context, subject string) (user.Profile, error)
	UpdateProfile(ctx context.Context, subject string, update user.ProfileUpdate) (user.Profile, error)
	Details(ctx context.Context, id string) (user.PublicDetails, error)
	SubmitVerification(ctx context.Context, subject string, params user.SubmitVerificationParams) (user.User, error)
	ForceApprove(ctx context.Context, subject string) (user.User, error)
	CheckOwnerAccess(ctx context.Context, subject string) (user.OwnerAccess, error)
}

type avatarService interface {
	Resolve(ctx context.Context, subject string) (string, error)
}

type flatmateService interface {
	Search(ctx context.Context, requesterSubject string, strategy flatmate.Strategy, page, pageSize int) (flatmate.Result, error)
}

type propertyService interface {
	Create(ctx context.Context, ownerSubject string, params property.CreateParams) (property.Property, error)
	List(ctx context.Context, filters property.Filters) (property.Page, error)
	ListByOwner(ctx context.Context, filters property.OwnerFilters) (property.Page, error)
	Get(ctx context.Context, id string) (property.Property, error)
	Update(ctx context.Context, id, callerSubject string, patch property.Patch) (property.Property, error)
	Delete(ctx context.Context, id, callerSubject string) error
	ToggleActive(ctx context.Context, id, callerSubject string) (property.Property, error)
	RecordInquiry(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerSubject string) (property.Stats, error)
	Featured(ctx context.Context, limit int) ([]property.Property, error)
	Recent(ctx context.Context, limit int) ([]property.Property, error)
}

type ratingService interface {
	Submit(ctx context.Context, params rating.SubmitParams) (rating.Rating, error)
	List(ctx context.Context, filters rating.Filters) (rating.Page, error)
	Stats(ctx context.Context) (rating.Stats, error)
	TrustStats(ctx context.Context) (rating.TrustStats, error)
	PlatformStats(ctx context.Context) (rating.PlatformStats, error)
	UserRating(ctx context.Context, email string) (rating.Rating, error)
	FeaturedTestimonials(ctx context.Context, limit int) ([]rating.Rating, error)
	UpdateStatus(ctx context.Context, id string, update rating.StatusUpdate) (rating.Rating, error)
}

type tokenVerifier interface {
	Verify(tokenString string) (identity.Assertion, error)
}

type errorMonitor interface {
	CaptureException(err error)
}

type Server struct {
	userService     userService
	avatarService   avatarService
	flatmateService flatmateService
	propertyService propertyService
	ratingService   ratingService
	verifier        tokenVerifier
	monitor         errorMonitor
	adminKeyHash    string
	development     bool
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/user", s.handleUser)
	mux.HandleFunc("/api/user/", s.handleUserDetail)
	mux.HandleFunc("/api/search-flatmates", s.handleSearchFlatmates)
	mux.HandleFunc("/api/property", s.handleProperties)
	mux.HandleFunc("/api/property/", s.handlePropertyDetail)
	mux.HandleFunc("/api/ratings", s.handleRatings)
	mux.HandleFunc("/api/ratings/", s.handleRatingDetail)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type envelope struct {
	Success          bool   `json:"success"`
	Data             any    `json:"data,omitempty"`
	Error            string `json:"error,omitempty"`
	CompletionStatus *bool  `json:"completionStatus,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// writeServiceError maps domain errors onto the HTTP taxonomy. Unexpected
// errors go to the monitor and their detail stays server-side outside
// development mode.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var missingField *user.MissingFieldError
	var propertyInvalid property.ValidationError
	var ratingInvalid rating.ValidationError

	switch {
	case errors.As(err, &missingField),
		errors.As(err, &propertyInvalid),
		errors.As(err, &ratingInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, flatmate.ErrProfileIncomplete):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		complete := false
		_ = json.NewEncoder(w).Encode(envelope{
			Success:          false,
			Error:            "complete your profile to search flatmates",
			CompletionStatus: &complete,
		})
	case errors.Is(err, user.ErrAlreadyApproved):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, property.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, property.ErrNotFound),
		errors.Is(err, rating.ErrNotFound),
		errors.Is(err, flatmate.ErrRequesterNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("api: internal error: %v", err)
		if s.monitor != nil {
			s.monitor.CaptureException(err)
		}
		if s.development {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// authenticate verifies the bearer token and returns the identity assertion.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (identity.Assertion, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return identity.Assertion{}, false
	}
	assertion, err := s.verifier.Verify(header[len(prefix):])
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid identity assertion")
		return identity.Assertion{}, false
	}
	return assertion, true
}

// requireSubject authenticates and additionally demands that the path id
// names the caller's own record. Admin callers bypass the match.
func (s *Server) requireSubject(w http.ResponseWriter, r *http.Request, pathID string) (identity.Assertion, bool) {
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return identity.Assertion{}, false
	}
	if assertion.Subject != pathID && !s.isAdmin(r) {
		writeError(w, http.StatusForbidden, "not allowed")
		return identity.Assertion{}, false
	}
	return assertion, true
}

// isAdmin compares the X-Admin-Key header against the configured bcrypt
// hash. An empty hash disables administrative access entirely.
func (s *Server) isAdmin(r *http.Request) bool {
	if s.adminKeyHash == "" {
		return false
	}
	key := r.Header.Get("X-Admin-Key")
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(key)) == nil
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !s.isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin key required")
		return false
	}
	return true
}
