package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentmate/flatmate"
	"rentmate/user"
)

type userResponse struct {
	ID                 string           `json:"id"`
	Subject            string           `json:"subject"`
	Name               string           `json:"name"`
	Email              string           `json:"email"`
	Picture            string           `json:"picture"`
	Phone              string           `json:"phone"`
	Address            string           `json:"address"`
	Bio                string           `json:"bio"`
	SocialMedia        user.SocialMedia `json:"socialMedia"`
	UserType           string           `json:"userType"`
	VerificationStatus string           `json:"verificationStatus"`
	IsVerified         bool             `json:"isVerified"`
	SubmittedAt        *time.Time       `json:"submittedAt,omitempty"`
	ApprovedAt         *time.Time       `json:"approvedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Subject:            u.Subject,
		Name:               u.Name,
		Email:              u.Email,
		Picture:            u.Picture,
		Phone:              u.Phone,
		Address:            u.Address,
		Bio:                u.Bio,
		SocialMedia:        u.SocialMedia,
		UserType:           string(u.UserType),
		VerificationStatus: string(u.VerificationStatus),
		IsVerified:         u.IsVerified,
		SubmittedAt:        u.SubmittedAt,
		ApprovedAt:         u.ApprovedAt,
		CreatedAt:          u.CreatedAt,
	}
}

// handleUser is the identity bridge: POST /api/user upserts the caller's
// record from the verified assertion, never from the request body.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	result, err := s.userService.CreateOrUpdate(r.Context(), user.BridgeParams{
		Subject: assertion.Subject,
		Name:    assertion.Name,
		Email:   assertion.Email,
		Picture: assertion.Picture,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if result.IsExistingUser {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"user":              toUserResponse(result.User),
		"needsVerification": result.NeedsVerification,
		"isExistingUser":    result.IsExistingUser,
	})
}

// handleUserDetail routes /api/user/{id}[/...] by hand.
func (s *Server) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/user/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	// Public profile details live under their own segment.
	if parts[0] == "details" {
		if len(parts) != 2 || r.Method != http.MethodGet {
			writeError(w, http.StatusBadRequest, "bad details path")
			return
		}
		s.handleUserPublicDetails(w, r, parts[1])
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetUser(w, r, id)
		return
	}

	switch parts[1] {
	case "profile":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleUpdateProfile(w, r, id)
	case "verification":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleSubmitVerification(w, r, id)
	case "owner-access":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleOwnerAccess(w, r, id)
	case "flatmates":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleFlatmates(w, r, id)
	case "force-approval":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleForceApproval(w, r, id)
	case "profile-image":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleProfileImage(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireSubject(w, r, id); !ok {
		return
	}
	profile, err := s.userService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":              toUserResponse(profile.User),
		"isProfileComplete": profile.IsProfileComplete,
	})
}

func (s *Server) handleUserPublicDetails(w http.ResponseWriter, r *http.Request, id string) {
	details, err := s.userService.Details(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                details.ID,
		"subject":           details.Subject,
		"name":              details.Name,
		"email":             details.Email,
		"picture":           details.Picture,
		"bio":               details.Bio,
		"address":           details.Address,
		"phone":             details.Phone,
		"socialMedia":       details.SocialMedia,
		"userType":          string(details.UserType),
		"isVerified":        details.IsVerified,
		"memberSince":       details.MemberSince,
		"completionPercent": details.CompletionPercent,
	})
}

type profileUpdateRequest struct {
	Phone       *string           `json:"phone"`
	Address     *string           `json:"address"`
	Bio         *string           `json:"bio"`
	SocialMedia *user.SocialMedia `json:"socialMedia"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireSubject(w, r, id); !ok {
		return
	}
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile, err := s.userService.UpdateProfile(r.Context(), id, user.ProfileUpdate{
		Phone:       req.Phone,
		Address:     req.Address,
		Bio:         req.Bio,
		SocialMedia: req.SocialMedia,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":              toUserResponse(profile.User),
		"isProfileComplete": profile.IsProfileComplete,
	})
}

type verificationRequest struct {
	UserType         string                `json:"userType"`
	VerificationData user.VerificationData `json:"verificationData"`
}

func (s *Server) handleSubmitVerification(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireSubject(w, r, id); !ok {
		return
	}
	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.userService.SubmitVerification(r.Context(), id, user.SubmitVerificationParams{
		UserType: user.UserType(req.UserType),
		Data:     req.VerificationData,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(updated)})
}

func (s *Server) handleOwnerAccess(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireSubject(w, r, id); !ok {
		return
	}
	access, err := s.userService.CheckOwnerAccess(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"canAccess":                access.CanAccess,
		"userType":                 string(access.UserType),
		"isVerified":               access.IsVerified,
		"verificationStatus":       string(access.VerificationStatus),
		"hasCompletedVerification": access.HasCompletedVerification,
		"isOwnerType":              access.IsOwnerType,
	})
}

func (s *Server) handleForceApproval(w http.ResponseWriter, r *http.Request, id string) {
	if !s.requireAdmin(w, r) {
		return
	}
	updated, err := s.userService.ForceApprove(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(updated)})
}

func (s *Server) handleProfileImage(w http.ResponseWriter, r *http.Request, id string) {
	url, err := s.avatarService.Resolve(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

func (s *Server) handleFlatmates(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireSubject(w, r, id); !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := s.flatmateService.Search(r.Context(), id, flatmate.Strategy{Kind: flatmate.ByUserType}, page, pageSize)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeFlatmateResult(w, result)
}

// handleSearchFlatmates is the keyword variant; the requester is always the
// token subject.
func (s *Server) handleSearchFlatmates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	strategy := flatmate.Strategy{
		Kind:     flatmate.ByKeyword,
		Keywords: r.URL.Query().Get("keywords"),
	}

	result, err := s.flatmateService.Search(r.Context(), assertion.Subject, strategy, page, pageSize)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeFlatmateResult(w, result)
}

type flatmateResponse struct {
	Subject     string           `json:"subject"`
	Name        string           `json:"name"`
	Picture     string           `json:"picture"`
	Bio         string           `json:"bio"`
	Address     string           `json:"address"`
	SocialMedia user.SocialMedia `json:"socialMedia"`
	UserType    string           `json:"userType"`
	IsVerified  bool             `json:"isVerified"`
}

func writeFlatmateResult(w http.ResponseWriter, result flatmate.Result) {
	items := make([]flatmateResponse, 0, len(result.Flatmates))
	for _, u := range result.Flatmates {
		items = append(items, flatmateResponse{
			Subject:     u.Subject,
			Name:        u.Name,
			Picture:     u.Picture,
			Bio:         u.Bio,
			Address:     u.Address,
			SocialMedia: u.SocialMedia,
			UserType:    string(u.UserType),
			IsVerified:  u.IsVerified,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"flatmates":  items,
		"pagination": paginationPayload(result.Pagination.CurrentPage, result.Pagination.TotalPages, result.Pagination.TotalCount, result.Pagination.HasNextPage, result.Pagination.HasPreviousPage),
	})
}

func paginationPayload(current, totalPages, totalCount int, hasNext, hasPrev bool) map[string]any {
	return map[string]any{
		"currentPage":     current,
		"totalPages":      totalPages,
		"totalCount":      totalCount,
		"hasNextPage":     hasNext,
		"hasPreviousPage": hasPrev,
	}
}
