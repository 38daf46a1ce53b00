package user

import "testing"

func completeUser() User {
	return User{
		Name:    "Priya Sharma",
		Email:   "priya@example.com",
		Picture: "https://example.com/p.jpg",
		Phone:   "9876543210",
		Address: "12 MG Road, Bengaluru",
		Bio:     "Looking for a flatmate near Indiranagar",
		SocialMedia: SocialMedia{
			Instagram: "priya.insta",
			Twitter:   "priya_tw",
			Facebook:  "priya.fb",
			LinkedIn:  "priya-ln",
		},
	}
}

func TestIsProfileComplete_AllFieldsPresent(t *testing.T) {
	if !IsProfileComplete(completeUser()) {
		t.Fatal("expected complete profile to pass the strict gate")
	}
}

func TestIsProfileComplete_EachFieldRequired(t *testing.T) {
	clear := []struct {
		name  string
		apply func(*User)
	}{
		{"phone", func(u *User) { u.Phone = "" }},
		{"address", func(u *User) { u.Address = "   " }},
		{"bio", func(u *User) { u.Bio = "" }},
		{"instagram", func(u *User) { u.SocialMedia.Instagram = "" }},
		{"twitter", func(u *User) { u.SocialMedia.Twitter = "\t" }},
		{"facebook", func(u *User) { u.SocialMedia.Facebook = "" }},
		{"linkedin", func(u *User) { u.SocialMedia.LinkedIn = "" }},
	}

	for _, tc := range clear {
		t.Run(tc.name, func(t *testing.T) {
			u := completeUser()
			tc.apply(&u)
			if IsProfileComplete(u) {
				t.Fatalf("expected gate to fail with empty %s", tc.name)
			}
		})
	}
}

func TestIsProfileComplete_LastMissingFieldFlips(t *testing.T) {
	u := completeUser()
	u.Bio = ""

	if IsProfileComplete(u) {
		t.Fatal("expected incomplete while bio is empty")
	}
	u.Bio = "new bio"
	if !IsProfileComplete(u) {
		t.Fatal("expected complete after filling the last missing field")
	}
}

func TestCompletionPercent(t *testing.T) {
	if got := CompletionPercent(completeUser()); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}

	if got := CompletionPercent(User{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}

	// 5 of 10 fields filled.
	half := User{
		Name:    "Priya",
		Email:   "priya@example.com",
		Picture: "p.jpg",
		Bio:     "bio",
		Address: "addr",
	}
	if got := CompletionPercent(half); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}

	// 7 of 10 rounds to 70.
	most := completeUser()
	most.SocialMedia.Instagram = ""
	most.SocialMedia.Twitter = ""
	most.SocialMedia.Facebook = ""
	if got := CompletionPercent(most); got != 70 {
		t.Fatalf("expected 70, got %d", got)
	}
}

func TestCompletionPercent_IgnoresVerificationState(t *testing.T) {
	u := completeUser()
	before := CompletionPercent(u)
	u.IsVerified = true
	u.VerificationStatus = StatusApproved
	if CompletionPercent(u) != before {
		t.Fatal("completion percent must be a pure profile function")
	}
}
