package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentmate/property"
)

type propertyResponse struct {
	ID              string                `json:"id"`
	OwnerSubject    string                `json:"ownerSubject"`
	PropertyType    string                `json:"propertyType"`
	PropertySubType string                `json:"propertySubType,omitempty"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Address         property.Address      `json:"address"`
	NearbyPlaces    property.NearbyPlaces `json:"nearbyPlaces"`
	Details         property.Details      `json:"details"`
	Amenities       property.Amenities    `json:"amenities"`
	Rules           property.Rules        `json:"rules"`
	Pricing         property.Pricing      `json:"pricing"`
	Availability    property.Availability `json:"availability"`
	Media           []property.MediaItem  `json:"media"`
	ContactInfo     property.ContactInfo  `json:"contactInfo"`
	PublishStatus   string                `json:"publishStatus"`
	IsActive        bool                  `json:"isActive"`
	Verified        bool                  `json:"verified"`
	Featured        bool                  `json:"featured"`
	Views           int64                 `json:"views"`
	Inquiries       int64                 `json:"inquiries"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func toPropertyResponse(p property.Property) propertyResponse {
	return propertyResponse{
		ID:              p.ID,
		OwnerSubject:    p.OwnerSubject,
		PropertyType:    p.PropertyType,
		PropertySubType: p.PropertySubType,
		Title:           p.Title,
		Description:     p.Description,
		Address:         p.Address,
		NearbyPlaces:    p.NearbyPlaces,
		Details:         p.Details,
		Amenities:       p.Amenities,
		Rules:           p.Rules,
		Pricing:         p.Pricing,
		Availability:    p.Availability,
		Media:           p.Media,
		ContactInfo:     p.ContactInfo,
		PublishStatus:   string(p.PublishStatus),
		IsActive:        p.IsActive,
		Verified:        p.Verified,
		Featured:        p.Featured,
		Views:           p.Views,
		Inquiries:       p.Inquiries,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toPropertyResponses(list []property.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

// handleProperties serves GET /api/property, the public catalog.
func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("limit"))
	minRent, _ := strconv.ParseInt(q.Get("minRent"), 10, 64)
	maxRent, _ := strconv.ParseInt(q.Get("maxRent"), 10, 64)

	result, err := s.propertyService.List(r.Context(), property.Filters{
		City:         q.Get("city"),
		Area:         q.Get("area"),
		PropertyType: q.Get("propertyType"),
		Gender:       q.Get("gender"),
		Furnishing:   q.Get("furnishing"),
		MinRent:      minRent,
		MaxRent:      maxRent,
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writePropertyPage(w, result)
}

// handlePropertyDetail routes /api/property/{...} by hand.
func (s *Server) handlePropertyDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/property/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "missing path")
		return
	}

	switch parts[0] {
	case "create":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleCreateProperty(w, r)
		return
	case "featured":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := s.propertyService.Featured(r.Context(), limit)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyResponses(list)})
		return
	case "recent":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := s.propertyService.Recent(r.Context(), limit)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyResponses(list)})
		return
	case "owner":
		s.handleOwnerProperties(w, r, parts[1:])
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetProperty(w, r, id)
		case http.MethodPut:
			s.handleUpdateProperty(w, r, id)
		case http.MethodDelete:
			s.handleDeleteProperty(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	switch parts[1] {
	case "inquiry":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.propertyService.RecordInquiry(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	case "toggle-status":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		assertion, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		updated, err := s.propertyService.ToggleActive(r.Context(), id, assertion.Subject)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"property": toPropertyResponse(updated)})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type createPropertyRequest struct {
	PropertyType    string                 `json:"propertyType"`
	PropertySubType string                 `json:"propertySubType"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Address         property.Address       `json:"address"`
	NearbyPlaces    property.NearbyPlaces  `json:"nearbyPlaces"`
	Details         property.Details       `json:"details"`
	Amenities       property.Amenities     `json:"amenities"`
	Rules           property.Rules         `json:"rules"`
	Pricing         property.Pricing       `json:"pricing"`
	Availability    property.Availability  `json:"availability"`
	Media           []property.MediaItem   `json:"media"`
	ContactInfo     property.ContactInfo   `json:"contactInfo"`
	PublishStatus   property.PublishStatus `json:"publishStatus"`
}

// handleCreateProperty requires the caller to have passed the owner
// verification gate. The owner id is the verified token subject.
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	access, err := s.userService.CheckOwnerAccess(r.Context(), assertion.Subject)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !access.CanAccess {
		writeError(w, http.StatusForbidden, "owner verification required")
		return
	}

	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.propertyService.Create(r.Context(), assertion.Subject, property.CreateParams{
		PropertyType:    req.PropertyType,
		PropertySubType: req.PropertySubType,
		Title:           req.Title,
		Description:     req.Description,
		Address:         req.Address,
		NearbyPlaces:    req.NearbyPlaces,
		Details:         req.Details,
		Amenities:       req.Amenities,
		Rules:           req.Rules,
		Pricing:         req.Pricing,
		Availability:    req.Availability,
		Media:           req.Media,
		ContactInfo:     req.ContactInfo,
		PublishStatus:   req.PublishStatus,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"property": toPropertyResponse(created)})
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.propertyService.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property": toPropertyResponse(p)})
}

type updatePropertyRequest struct {
	PropertyType    *string                 `json:"propertyType"`
	PropertySubType *string                 `json:"propertySubType"`
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Address         *property.Address       `json:"address"`
	NearbyPlaces    *property.NearbyPlaces  `json:"nearbyPlaces"`
	Details         *property.Details       `json:"details"`
	Amenities       *property.Amenities     `json:"amenities"`
	Rules           *property.Rules         `json:"rules"`
	Pricing         *property.Pricing       `json:"pricing"`
	Availability    *property.Availability  `json:"availability"`
	Media           *[]property.MediaItem   `json:"media"`
	ContactInfo     *property.ContactInfo   `json:"contactInfo"`
	PublishStatus   *property.PublishStatus `json:"publishStatus"`
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request, id string) {
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req updatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.propertyService.Update(r.Context(), id, assertion.Subject, property.Patch{
		PropertyType:    req.PropertyType,
		PropertySubType: req.PropertySubType,
		Title:           req.Title,
		Description:     req.Description,
		Address:         req.Address,
		NearbyPlaces:    req.NearbyPlaces,
		Details:         req.Details,
		Amenities:       req.Amenities,
		Rules:           req.Rules,
		Pricing:         req.Pricing,
		Availability:    req.Availability,
		Media:           req.Media,
		ContactInfo:     req.ContactInfo,
		PublishStatus:   req.PublishStatus,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property": toPropertyResponse(updated)})
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request, id string) {
	assertion, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.propertyService.Delete(r.Context(), id, assertion.Subject); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleOwnerProperties serves /api/property/owner/{ownerId}[/stats].
func (s *Server) handleOwnerProperties(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet || len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad owner path")
		return
	}
	ownerID := parts[0]
	if _, ok := s.requireSubject(w, r, ownerID); !ok {
		return
	}

	if len(parts) == 2 && parts[1] == "stats" {
		stats, err := s.propertyService.Stats(r.Context(), ownerID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"totalProperties": stats.TotalProperties,
			"published":       stats.Published,
			"drafts":          stats.Drafts,
			"totalViews":      stats.TotalViews,
			"totalInquiries":  stats.TotalInquiries,
			"averageRent":     stats.AverageRent,
		})
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("limit"))
	result, err := s.propertyService.ListByOwner(r.Context(), property.OwnerFilters{
		OwnerSubject:  ownerID,
		PublishStatus: property.PublishStatus(q.Get("status")),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writePropertyPage(w, result)
}

func writePropertyPage(w http.ResponseWriter, page property.Page) {
	writeJSON(w, http.StatusOK, map[string]any{
		"properties": toPropertyResponses(page.Properties),
		"pagination": paginationPayload(
			page.Pagination.CurrentPage,
			page.Pagination.TotalPages,
			page.Pagination.TotalCount,
			page.Pagination.HasNextPage,
			page.Pagination.HasPreviousPage,
		),
	})
}
