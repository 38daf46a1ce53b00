package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func validVerificationData() VerificationData {
	return VerificationData{
		FullName:    "Priya Sharma",
		PhoneNumber: "9876543210",
		Address: VerificationAddress{
			Street:  "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
		},
		EmergencyContact: EmergencyContact{
			Name:     "Rahul Sharma",
			Relation: "Brother",
			Phone:    "9123456780",
		},
		Profession: "Software Engineer",
	}
}

func TestCreateOrUpdate_FirstSight(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	res, err := svc.CreateOrUpdate(context.Background(), BridgeParams{
		Subject: "auth0|u1",
		Name:    "Priya Sharma",
		Email:   "priya@example.com",
		Picture: "https://cdn.example.com/p.jpg",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if res.IsExistingUser {
		t.Fatal("expected new user")
	}
	if !res.NeedsVerification {
		t.Fatal("expected new user to need verification")
	}
	if res.User.VerificationStatus != StatusPending {
		t.Fatalf("expected PENDING, got %s", res.User.VerificationStatus)
	}
	if res.User.IsVerified {
		t.Fatal("new user must not be verified")
	}
}

func TestCreateOrUpdate_RefreshesIdentityFields(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.CreateOrUpdate(ctx, BridgeParams{Subject: "auth0|u1", Name: "Old Name", Email: "old@example.com"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.CreateOrUpdate(ctx, BridgeParams{Subject: "auth0|u1", Name: "New Name", Picture: "new.jpg"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !res.IsExistingUser {
		t.Fatal("expected existing user")
	}
	if res.User.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", res.User.Name)
	}
	if res.User.Email != "old@example.com" {
		t.Fatalf("empty email must not clobber stored value, got %q", res.User.Email)
	}
	if res.User.Picture != "new.jpg" {
		t.Fatalf("expected updated picture, got %q", res.User.Picture)
	}
}

func TestCreateOrUpdate_MissingSubject(t *testing.T) {
	svc := NewService(newFakeRepository())
	if _, err := svc.CreateOrUpdate(context.Background(), BridgeParams{}); err == nil {
		t.Fatal("expected error for missing subject")
	}
}

func TestSubmitVerification_AutoApproves(t *testing.T) {
	repo := newFakeRepository()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo).WithClock(func() time.Time { return now })
	ctx := context.Background()

	seedUser(t, svc, "auth0|owner")

	u, err := svc.SubmitVerification(ctx, "auth0|owner", SubmitVerificationParams{
		UserType: TypePGOwner,
		Data:     validVerificationData(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if u.VerificationStatus != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", u.VerificationStatus)
	}
	if !u.IsVerified {
		t.Fatal("expected isVerified true after approval")
	}
	if u.SubmittedAt == nil || !u.SubmittedAt.Equal(now) {
		t.Fatalf("expected submittedAt %v, got %v", now, u.SubmittedAt)
	}
	if u.ApprovedAt == nil || !u.ApprovedAt.Equal(now) {
		t.Fatalf("expected approvedAt %v, got %v", now, u.ApprovedAt)
	}
}

func TestSubmitVerification_InvariantHoldsAfterEveryTransition(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()
	seedUser(t, svc, "auth0|u1")

	check := func(label string) {
		u, err := repo.GetBySubject(ctx, "auth0|u1")
		if err != nil {
			t.Fatalf("%s: get: %v", label, err)
		}
		if u.IsVerified != u.VerificationStatus.Approved() {
			t.Fatalf("%s: invariant violated: isVerified=%v status=%s", label, u.IsVerified, u.VerificationStatus)
		}
	}

	check("initial")

	if _, err := svc.SubmitVerification(ctx, "auth0|u1", SubmitVerificationParams{UserType: TypeFlatOwner, Data: validVerificationData()}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	check("after submit")

	// Rejection through the repository write path keeps the invariant too.
	if _, err := repo.ApplyVerification(ctx, "auth0|u1", VerificationWrite{Status: StatusRejected, At: time.Now()}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	check("after reject")

	if _, err := svc.ForceApprove(ctx, "auth0|u1"); err != nil {
		t.Fatalf("force approve: %v", err)
	}
	check("after force approve")
}

func TestSubmitVerification_ConflictWhenAlreadyApproved(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()
	seedUser(t, svc, "auth0|u1")

	params := SubmitVerificationParams{UserType: TypePGOwner, Data: validVerificationData()}
	if _, err := svc.SubmitVerification(ctx, "auth0|u1", params); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	before, _ := repo.GetBySubject(ctx, "auth0|u1")

	if _, err := svc.SubmitVerification(ctx, "auth0|u1", params); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}

	after, _ := repo.GetBySubject(ctx, "auth0|u1")
	if !reflect.DeepEqual(before, after) {
		t.Fatal("conflicting resubmission must leave the record unchanged")
	}
}

func TestSubmitVerification_MissingFields(t *testing.T) {
	cases := []struct {
		field string
		apply func(*VerificationData)
	}{
		{"fullName", func(d *VerificationData) { d.FullName = "" }},
		{"phoneNumber", func(d *VerificationData) { d.PhoneNumber = "  " }},
		{"address.street", func(d *VerificationData) { d.Address.Street = "" }},
		{"address.city", func(d *VerificationData) { d.Address.City = "" }},
		{"emergencyContact.name", func(d *VerificationData) { d.EmergencyContact.Name = "" }},
		{"emergencyContact.phone", func(d *VerificationData) { d.EmergencyContact.Phone = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			repo := newFakeRepository()
			svc := NewService(repo)
			ctx := context.Background()
			seedUser(t, svc, "auth0|u1")

			data := validVerificationData()
			tc.apply(&data)

			_, err := svc.SubmitVerification(ctx, "auth0|u1", SubmitVerificationParams{UserType: TypePGOwner, Data: data})

			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tc.field {
				t.Fatalf("expected field %q named, got %q", tc.field, missing.Field)
			}

			u, _ := repo.GetBySubject(ctx, "auth0|u1")
			if u.VerificationData != nil || u.IsVerified {
				t.Fatal("failed validation must not persist anything")
			}
		})
	}
}

func TestSubmitVerification_RequiresUserType(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	seedUser(t, svc, "auth0|u1")

	_, err := svc.SubmitVerification(context.Background(), "auth0|u1", SubmitVerificationParams{Data: validVerificationData()})
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "userType" {
		t.Fatalf("expected userType MissingFieldError, got %v", err)
	}
}

func TestCheckOwnerAccess(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()
	seedUser(t, svc, "auth0|owner")
	seedUser(t, svc, "auth0|seeker")

	access, err := svc.CheckOwnerAccess(ctx, "auth0|owner")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if access.CanAccess {
		t.Fatal("unverified user must not have owner access")
	}

	if _, err := svc.SubmitVerification(ctx, "auth0|owner", SubmitVerificationParams{UserType: TypePGOwner, Data: validVerificationData()}); err != nil {
		t.Fatalf("submit owner: %v", err)
	}
	access, err = svc.CheckOwnerAccess(ctx, "auth0|owner")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !access.CanAccess {
		t.Fatalf("verified PG owner must have access: %+v", access)
	}

	// Verified seeker: all checks pass except the owner-type requirement.
	if _, err := svc.SubmitVerification(ctx, "auth0|seeker", SubmitVerificationParams{UserType: TypeLookingForPG, Data: validVerificationData()}); err != nil {
		t.Fatalf("submit seeker: %v", err)
	}
	access, err = svc.CheckOwnerAccess(ctx, "auth0|seeker")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if access.CanAccess {
		t.Fatal("seeker must not have owner access")
	}
	if !access.IsVerified || access.IsOwnerType {
		t.Fatalf("unexpected flags: %+v", access)
	}
}

func TestForceApprove_BackfillsSubmittedAt(t *testing.T) {
	repo := newFakeRepository()
	now := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	svc := NewService(repo).WithClock(func() time.Time { return now })
	seedUser(t, svc, "auth0|u1")

	u, err := svc.ForceApprove(context.Background(), "auth0|u1")
	if err != nil {
		t.Fatalf("force approve: %v", err)
	}
	if u.VerificationStatus != StatusApproved || !u.IsVerified {
		t.Fatalf("expected approved+verified, got %s/%v", u.VerificationStatus, u.IsVerified)
	}
	if u.SubmittedAt == nil || !u.SubmittedAt.Equal(now) {
		t.Fatalf("expected backfilled submittedAt, got %v", u.SubmittedAt)
	}
}

func TestUpdateProfile_EditableFieldsOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()
	seedUser(t, svc, "auth0|u1")

	phone := "9876543210"
	bio := "Looking for a 2BHK share"
	profile, err := svc.UpdateProfile(ctx, "auth0|u1", ProfileUpdate{Phone: &phone, Bio: &bio})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.User.Phone != phone || profile.User.Bio != bio {
		t.Fatalf("expected fields updated, got %+v", profile.User)
	}
	if profile.IsProfileComplete {
		t.Fatal("partial profile must not be complete")
	}

	addr := "12 MG Road"
	social := SocialMedia{Instagram: "a", Twitter: "b", Facebook: "c", LinkedIn: "d"}
	profile, err = svc.UpdateProfile(ctx, "auth0|u1", ProfileUpdate{Address: &addr, SocialMedia: &social})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if !profile.IsProfileComplete {
		t.Fatalf("expected complete profile, got %+v", profile.User)
	}
}

func TestDetails_NotFound(t *testing.T) {
	svc := NewService(newFakeRepository())
	if _, err := svc.Details(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedUser(t *testing.T, svc *Service, subject string) {
	t.Helper()
	if _, err := svc.CreateOrUpdate(context.Background(), BridgeParams{Subject: subject, Name: "Test User", Email: subject + "@example.com"}); err != nil {
		t.Fatalf("seed %s: %v", subject, err)
	}
}

// fakeRepository mirrors PGRepository semantics in memory, including the
// derived is_verified invariant and COALESCE-style partial updates.
type fakeRepository struct {
	bySubject map[string]User
	nextID    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bySubject: make(map[string]User),
		nextID:    1,
	}
}

func (f *fakeRepository) Create(ctx context.Context, params CreateParams) (User, error) {
	if _, exists := f.bySubject[params.Subject]; exists {
		return User{}, ErrDuplicateSubject
	}

	now := time.Now().UTC()
	u := User{
		ID:                 fmt.Sprintf("id-%d", f.nextID),
		Subject:            params.Subject,
		Name:               params.Name,
		Email:              params.Email,
		Picture:            params.Picture,
		VerificationStatus: StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.nextID++
	f.bySubject[u.Subject] = u
	return u, nil
}

func (f *fakeRepository) GetBySubject(ctx context.Context, subject string) (User, error) {
	u, ok := f.bySubject[subject]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepository) GetBySubjectOrID(ctx context.Context, id string) (User, error) {
	if u, ok := f.bySubject[id]; ok {
		return u, nil
	}
	for _, u := range f.bySubject {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeRepository) UpdateIdentity(ctx context.Context, subject string, update IdentityUpdate) (User, error) {
	u, ok := f.bySubject[subject]
	if !ok {
		return User{}, ErrNotFound
	}
	if strings.TrimSpace(update.Name) != "" {
		u.Name = update.Name
	}
	if strings.TrimSpace(update.Email) != "" {
		u.Email = update.Email
	}
	if strings.TrimSpace(update.Picture) != "" {
		u.Picture = update.Picture
	}
	u.UpdatedAt = time.Now().UTC()
	f.bySubject[subject] = u
	return u, nil
}

func (f *fakeRepository) UpdateProfile(ctx context.Context, subject string, update ProfileUpdate) (User, error) {
	u, ok := f.bySubject[subject]
	if !ok {
		return User{}, ErrNotFound
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.SocialMedia != nil {
		u.SocialMedia = *update.SocialMedia
	}
	u.UpdatedAt = time.Now().UTC()
	f.bySubject[subject] = u
	return u, nil
}

func (f *fakeRepository) ApplyVerification(ctx context.Context, subject string, write VerificationWrite) (User, error) {
	u, ok := f.bySubject[subject]
	if !ok {
		return User{}, ErrNotFound
	}

	if write.UserType != "" {
		u.UserType = write.UserType
	}
	if write.Data != nil {
		data := *write.Data
		u.VerificationData = &data
	}
	u.VerificationStatus = write.Status
	u.IsVerified = write.Status.Approved()
	at := write.At
	if u.SubmittedAt == nil {
		u.SubmittedAt = &at
	}
	u.ReviewedAt = &at
	if u.IsVerified {
		u.ApprovedAt = &at
	}
	u.UpdatedAt = time.Now().UTC()
	f.bySubject[subject] = u
	return u, nil
}
