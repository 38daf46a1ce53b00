package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentmate/rating"
)

type ratingResponse struct {
	ID          string    `json:"id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	UserName    string    `json:"userName"`
	UserPicture string    `json:"userPicture"`
	IsVerified  bool      `json:"isVerified"`
	UserType    string    `json:"userType,omitempty"`
	IsFeatured  bool      `json:"isFeatured"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// toRatingResponse drops the email and subject: those stay server-side.
func toRatingResponse(r rating.Rating) ratingResponse {
	return ratingResponse{
		ID:          r.ID,
		Rating:      r.Rating,
		Comment:     r.Comment,
		UserName:    r.UserName,
		UserPicture: r.UserPicture,
		IsVerified:  r.IsVerified,
		UserType:    r.UserType,
		IsFeatured:  r.IsFeatured,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

func toRatingResponses(list []rating.Rating) []ratingResponse {
	out := make([]ratingResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRatingResponse(r))
	}
	return out
}

// handleRatings serves GET /api/ratings, the public approved listing.
func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("limit"))
	minRating, _ := strconv.Atoi(q.Get("minRating"))

	result, err := s.ratingService.List(r.Context(), rating.Filters{
		MinRating:    minRating,
		FeaturedOnly: q.Get("featured") == "true",
		Sort:         q.Get("sort"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ratings": toRatingResponses(result.Ratings),
		"pagination": paginationPayload(
			result.Pagination.CurrentPage,
			result.Pagination.TotalPages,
			result.Pagination.TotalCount,
			result.Pagination.HasNextPage,
			result.Pagination.HasPreviousPage,
		),
	})
}

// handleRatingDetail routes /api/ratings/{...} by hand.
func (s *Server) handleRatingDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/ratings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}

	if len(parts) == 1 {
		switch parts[0] {
		case "submit":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handleSubmitRating(w, r)
		case "stats":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handleRatingStats(w, r)
		case "trust-stats":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handleTrustStats(w, r)
		case "platform-stats":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handlePlatformStats(w, r)
		case "user-rating":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handleUserRating(w, r)
		case "featured-testimonials":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			s.handleFeaturedTestimonials(w, r)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	if len(parts) == 2 && parts[1] == "status" {
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleUpdateRatingStatus(w, r, parts[0])
		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

type submitRatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.ratingService.Submit(r.Context(), rating.SubmitParams{
		Rating:  req.Rating,
		Comment: req.Comment,
		Name:    req.Name,
		Email:   req.Email,
		Picture: req.Picture,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"rating": toRatingResponse(rec)})
}

func (s *Server) handleRatingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ratingService.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRatings":  stats.TotalRatings,
		"averageRating": stats.AverageRating,
		"histogram": map[string]int64{
			"1": stats.Histogram[0],
			"2": stats.Histogram[1],
			"3": stats.Histogram[2],
			"4": stats.Histogram[3],
			"5": stats.Histogram[4],
		},
		"verifiedCount": stats.VerifiedCount,
	})
}

func (s *Server) handleTrustStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ratingService.TrustStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalUsers":    stats.TotalUsers,
		"verifiedUsers": stats.VerifiedUsers,
		"totalRatings":  stats.TotalRatings,
		"averageRating": stats.AverageRating,
	})
}

func (s *Server) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ratingService.PlatformStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalUsers":    stats.TotalUsers,
		"verifiedUsers": stats.VerifiedUsers,
		"owners":        stats.Owners,
		"seekers":       stats.Seekers,
		"totalRatings":  stats.TotalRatings,
		"averageRating": stats.AverageRating,
		"fiveStarCount": stats.FiveStarCount,
	})
}

// handleUserRating returns the caller's own latest rating. The email comes
// from the verified assertion, not a query parameter.
func (s *Server) handleUserRating(w http.ResponseWriter, r *http.Request) {
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	rec, err := s.ratingService.UserRating(r.Context(), assertion.Email)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rating": toRatingResponse(rec)})
}

func (s *Server) handleFeaturedTestimonials(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.ratingService.FeaturedTestimonials(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"testimonials": toRatingResponses(list)})
}

type ratingStatusRequest struct {
	Status     *string `json:"status"`
	IsFeatured *bool   `json:"isFeatured"`
}

func (s *Server) handleUpdateRatingStatus(w http.ResponseWriter, r *http.Request, id string) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req ratingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	update := rating.StatusUpdate{IsFeatured: req.IsFeatured}
	if req.Status != nil {
		st := rating.Status(*req.Status)
		update.Status = &st
	}

	rec, err := s.ratingService.UpdateStatus(r.Context(), id, update)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rating": toRatingResponse(rec)})
}
