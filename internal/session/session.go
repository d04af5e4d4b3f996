// Package session owns the bearer token: it stores it, decodes the claims
// the storefront needs and derives what the current user may see.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Capability is what the current visitor may do.
type Capability int

const (
	// AnonymousView is the fail-open policy: read views render empty
	// instead of erroring.
	AnonymousView Capability = iota
	Customer
	Admin
)

func (c Capability) String() string {
	switch c {
	case Customer:
		return "customer"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Session is the decoded view of a stored token.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func (s Session) Capability() Capability {
	if s.IsAdmin {
		return Admin
	}
	return Customer
}

// Claims are the token claims issued by the store service.
type Claims struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingUserID  = errors.New("token carries no user id")
)

// Decode reads the claims without verifying the signature. The store
// service verifies every request; the client only needs the claims to
// decide what to show.
func Decode(token string, now time.Time) (Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ID == "" {
		return Session{}, ErrMissingUserID
	}

	s := Session{
		Token:   token,
		UserID:  claims.ID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(s.ExpiresAt) {
			return Session{}, ErrExpiredToken
		}
	}
	return s, nil
}
