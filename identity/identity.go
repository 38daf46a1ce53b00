package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidAssertion signals a malformed, expired or mis-signed identity token.
	ErrInvalidAssertion = errors.New("identity: invalid assertion")
)

// Assertion is the verified identity handed to the backend by the auth
// gateway on each request. Subject is the stable external user id.
type Assertion struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// Verifier validates HS256 identity assertions. The backend never trusts
// identity fields supplied in request bodies; everything flows through here.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the identity claims.
func (v *Verifier) Verify(tokenString string) (Assertion, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Assertion{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Assertion{}, ErrInvalidAssertion
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Assertion{}, fmt.Errorf("%w: missing sub", ErrInvalidAssertion)
	}

	return Assertion{
		Subject: sub,
		Name:    stringClaim(claims, "name"),
		Email:   stringClaim(claims, "email"),
		Picture: stringClaim(claims, "picture"),
	}, nil
}

// Mint signs an assertion for the given identity. Used by tests and local
// tooling; production assertions come from the identity provider gateway.
func (v *Verifier) Mint(a Assertion, ttl time.Duration) (string, error) {
	if a.Subject == "" {
		return "", fmt.Errorf("identity: mint: empty subject")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     a.Subject,
		"name":    a.Name,
		"email":   a.Email,
		"picture": a.Picture,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("identity: sign: %w", err)
	}
	return signed, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
