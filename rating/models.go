package rating

import "time"

// Status is the moderation state of a rating. Submissions default to
// approved, moderation is an after-the-fact admin action.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Rating is one feedback record. The submitter fields are a snapshot taken
// at write time: later profile changes never rewrite history.
type Rating struct {
	ID          string
	Rating      int
	Comment     string
	UserName    string
	UserEmail   string
	Subject     string
	UserPicture string
	IsVerified  bool
	UserType    string
	IsFeatured  bool
	Status      Status
	CreatedAt   time.Time
}

// Stats is the full aggregate over approved ratings.
type Stats struct {
	TotalRatings  int64
	AverageRating float64
	Histogram     [5]int64
	VerifiedCount int64
}

// TrustStats are the public display metrics combining rating and user
// aggregates.
type TrustStats struct {
	TotalUsers    int64
	VerifiedUsers int64
	TotalRatings  int64
	AverageRating float64
}

// PlatformStats extend the trust metrics with owner/seeker breakdowns.
type PlatformStats struct {
	TotalUsers    int64
	VerifiedUsers int64
	Owners        int64
	Seekers       int64
	TotalRatings  int64
	AverageRating float64
	FiveStarCount int64
}

// Pagination describes an offset-paginated result window.
type Pagination struct {
	CurrentPage     int
	TotalPages      int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Page is one page of ratings with pagination metadata.
type Page struct {
	Ratings    []Rating
	Pagination Pagination
}
