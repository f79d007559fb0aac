// Package models holds the server-side domain records.
package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a registered user as stored by the account directory.
type Account struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	IsVerified   bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicAccount is the projection of Account returned to callers.
// It never carries the password hash.
type PublicAccount struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
