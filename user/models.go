package user

import "time"

type UserType string

const (
	TypePGOwner      UserType = "PG_OWNER"
	TypeFlatOwner    UserType = "FLAT_OWNER"
	TypeLookingForPG UserType = "LOOKING_FOR_PG"
)

// IsOwner reports whether the type grants property-listing capabilities.
func (t UserType) IsOwner() bool {
	return t == TypePGOwner || t == TypeFlatOwner
}

func (t UserType) Valid() bool {
	switch t {
	case TypePGOwner, TypeFlatOwner, TypeLookingForPG:
		return true
	default:
		return false
	}
}

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusInReview VerificationStatus = "IN_REVIEW"
	StatusApproved VerificationStatus = "APPROVED"
	StatusVerified VerificationStatus = "VERIFIED"
	StatusRejected VerificationStatus = "REJECTED"
)

// Approved reports whether the status counts as a successful verification.
// The is_verified column must equal Approved() after every write; the
// repository derives it from the status instead of accepting it from callers.
func (s VerificationStatus) Approved() bool {
	return s == StatusApproved || s == StatusVerified
}

// SocialMedia holds the four profile links counted by the completeness gate.
type SocialMedia struct {
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Facebook  string `json:"facebook"`
	LinkedIn  string `json:"linkedin"`
}

// VerificationAddress is the free-form address block inside a submission.
type VerificationAddress struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark"`
}

type IdentityProof struct {
	Type       string `json:"type"`
	Number     string `json:"number"`
	FrontImage string `json:"frontImage"`
	BackImage  string `json:"backImage"`
}

type OwnershipProof struct {
	Type          string `json:"type"`
	DocumentImage string `json:"documentImage"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone"`
}

// SeekerPreferences only applies to LOOKING_FOR_PG submissions.
type SeekerPreferences struct {
	BudgetMin      string   `json:"budgetMin"`
	BudgetMax      string   `json:"budgetMax"`
	Location       []string `json:"location"`
	RoomType       string   `json:"roomType"`
	FoodPreference string   `json:"foodPreference"`
}

// VerificationData is the document submitted once by a user to unlock
// owner capabilities (or record seeker preferences).
type VerificationData struct {
	FullName         string               `json:"fullName"`
	PhoneNumber      string               `json:"phoneNumber"`
	AlternatePhone   string               `json:"alternatePhone"`
	Address          VerificationAddress  `json:"address"`
	PropertyType     string               `json:"propertyType"`
	PropertyAddress  *VerificationAddress `json:"propertyAddress,omitempty"`
	IdentityProof    *IdentityProof       `json:"identityProof,omitempty"`
	OwnershipProof   *OwnershipProof      `json:"ownershipProof,omitempty"`
	EmergencyContact EmergencyContact     `json:"emergencyContact"`
	Profession       string               `json:"profession"`
	WorkAddress      string               `json:"workAddress"`
	MonthlyIncome    string               `json:"monthlyIncome"`
	Preferences      *SeekerPreferences   `json:"preferences,omitempty"`
}

// User is the domain representation of an account. It mirrors the users
// table and carries no JSON annotations so presentation layers can shape
// their own payloads.
type User struct {
	ID                 string
	Subject            string
	Name               string
	Email              string
	Picture            string
	Phone              string
	Address            string
	Bio                string
	SocialMedia        SocialMedia
	UserType           UserType
	VerificationStatus VerificationStatus
	IsVerified         bool
	VerificationData   *VerificationData
	AdminNotes         string
	SubmittedAt        *time.Time
	ReviewedAt         *time.Time
	ApprovedAt         *time.Time
	RatingsCount       int
	HasSubmittedRating bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
