package property

import "time"

// PublishStatus controls public catalog visibility, distinct from IsActive.
type PublishStatus string

const (
	StatusDraft     PublishStatus = "draft"
	StatusPublished PublishStatus = "published"
	StatusInactive  PublishStatus = "inactive"
)

func (s PublishStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusInactive:
		return true
	}
	return false
}

// Address is the structured location block of a listing.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Area     string `json:"area"`
	Landmark string `json:"landmark"`
	Pincode  string `json:"pincode"`
	State    string `json:"state"`
}

// NearbyPlaces lists points of interest around the listing.
type NearbyPlaces struct {
	Colleges  []string `json:"colleges"`
	Offices   []string `json:"offices"`
	Hospitals []string `json:"hospitals"`
	Transport []string `json:"transport"`
	Markets   []string `json:"markets"`
}

// Details describes the physical room/flat characteristics.
type Details struct {
	RoomType      string `json:"roomType"`
	Furnishing    string `json:"furnishing"`
	FloorNumber   int    `json:"floorNumber"`
	TotalFloors   int    `json:"totalFloors"`
	RoomSize      string `json:"roomSize"`
	Gender        string `json:"gender"`
	Occupancy     string `json:"occupancy"`
	TotalRooms    int    `json:"totalRooms"`
	AvailableRoom int    `json:"availableRooms"`
	AttachedBath  bool   `json:"attachedBathroom"`
	Balcony       bool   `json:"balcony"`
}

// Amenities are the four categorized feature lists.
type Amenities struct {
	Basic    []string `json:"basic"`
	Comfort  []string `json:"comfort"`
	Security []string `json:"security"`
	Extra    []string `json:"extra"`
}

// Rules captures house rules for the listing.
type Rules struct {
	Smoking        bool   `json:"smoking"`
	Drinking       bool   `json:"drinking"`
	Pets           bool   `json:"pets"`
	Visitors       bool   `json:"visitors"`
	CoupleFriendly bool   `json:"coupleFriendly"`
	Gate           string `json:"gateClosingTime"`
	Notes          string `json:"additionalRules"`
}

// Pricing holds the money fields. RentAmount is also promoted to a
// dedicated column so range filters do not dig into jsonb.
type Pricing struct {
	RentAmount      int64  `json:"rentAmount"`
	SecurityDeposit int64  `json:"securityDeposit"`
	MaintenanceFee  int64  `json:"maintenanceFee"`
	ElectricityBill string `json:"electricityBill"`
	WaterBill       string `json:"waterBill"`
	Negotiable      bool   `json:"negotiable"`
}

// Availability is the occupancy window for the listing.
type Availability struct {
	AvailableFrom  *time.Time `json:"availableFrom,omitempty"`
	MinimumStay    string     `json:"minimumStay"`
	NoticePeriod   string     `json:"noticePeriod"`
	ImmediatelyAvl bool       `json:"immediatelyAvailable"`
}

// MediaItem is one entry of the ordered image list.
type MediaItem struct {
	URL       string `json:"url"`
	Caption   string `json:"caption"`
	IsPrimary bool   `json:"isPrimary"`
	Order     int    `json:"order"`
}

// ContactInfo is how seekers reach the owner.
type ContactInfo struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	AlternatePhone  string   `json:"alternatePhone"`
	Email           string   `json:"email"`
	PreferredTime   string   `json:"preferredContactTime"`
	ContactMethods  []string `json:"contactMethods"`
	Whatsappupdates bool     `json:"whatsappUpdates"`
}

// Property is a rental listing owned by exactly one user, referenced by
// the owner's external identity subject.
type Property struct {
	ID              string
	OwnerSubject    string
	PropertyType    string
	PropertySubType string
	Title           string
	Description     string
	City            string
	Area            string
	Landmark        string
	Gender          string
	Furnishing      string
	RentAmount      int64
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
	IsActive        bool
	Verified        bool
	Featured        bool
	Views           int64
	Inquiries       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Stats is the per-owner aggregate across all of their listings.
type Stats struct {
	TotalProperties int64
	Published       int64
	Drafts          int64
	TotalViews      int64
	TotalInquiries  int64
	AverageRent     float64
}

// Pagination describes an offset-paginated listing window.
type Pagination struct {
	CurrentPage     int
	TotalPages      int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Page is one page of listings with its pagination metadata.
type Page struct {
	Properties []Property
	Pagination Pagination
}
