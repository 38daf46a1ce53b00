package user

import (
	"math"
	"strings"
)

// IsProfileComplete is the strict AND-gate over the seven editable profile
// fields: phone, address, bio and the four social links. It gates flatmate
// search. Distinct from CompletionPercent, which is display-only and covers
// a wider field set.
func IsProfileComplete(u User) bool {
	fields := []string{
		u.Phone,
		u.Address,
		u.Bio,
		u.SocialMedia.Instagram,
		u.SocialMedia.Twitter,
		u.SocialMedia.Facebook,
		u.SocialMedia.LinkedIn,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// CompletionPercent computes the public completion percentage over the ten
// displayed fields (identity fields plus the strict set). It never gates
// anything.
func CompletionPercent(u User) int {
	fields := []string{
		u.Name,
		u.Email,
		u.Picture,
		u.Bio,
		u.Address,
		u.Phone,
		u.SocialMedia.Instagram,
		u.SocialMedia.Facebook,
		u.SocialMedia.LinkedIn,
		u.SocialMedia.Twitter,
	}

	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}

	return int(math.Round(100 * float64(filled) / float64(len(fields))))
}
