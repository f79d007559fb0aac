// Package models holds the client-side view of accounts and the persisted
// login session.
package models

import "time"

// Account is the public profile returned by the server.
type Account struct {
	ID         string
	Name       string
	Email      string
	Role       string
	IsVerified bool
	CreatedAt  time.Time
}

// Session is what the CLI keeps between runs after a successful login.
type Session struct {
	Email        string
	AccessToken  string
	RefreshToken string
}

// Empty reports whether the session carries no usable refresh token.
func (s *Session) Empty() bool {
	return s == nil || s.RefreshToken == ""
}
