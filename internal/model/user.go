// Package model defines the data structures used throughout the application.
package model

import (
	"strconv"
	"time"
)

// Role controls access to elevated operations (user administration,
// deleting other people's content).
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Provider tags the identity provider an account originated from.
// SYSTEM means a regular password registration; social logins carry the
// provider that vouched for the email.
type Provider string

const (
	ProviderSystem Provider = "SYSTEM"
	ProviderGitHub Provider = "GITHUB"
	ProviderGoogle Provider = "GOOGLE"
)

// User represents a registered account.
//
// Email is the login handle for both password and social flows and is unique
// across all providers: a social login for an email that already exists as a
// password account reconciles onto the same row instead of creating a
// duplicate.
//
// PasswordHash is a bcrypt hash for SYSTEM accounts. Social-originated
// accounts never collect a password, so the column holds a non-usable
// placeholder that can never verify (see auth.PasswordPlaceholder).
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Type         Provider  `json:"type"`
	IsVerify     bool      `json:"isVerify"`
	Address      string    `json:"address"`
	Avatar       string    `json:"avatar"`
	Gender       string    `json:"gender"` // male / female / other
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserView is the redacted projection of a User returned to clients.
// It carries everything except the password hash, with the numeric id
// stringified the way the API exposes it.
type UserView struct {
	ID       string   `json:"_id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     Role     `json:"role"`
	Type     Provider `json:"type"`
	IsVerify bool     `json:"isVerify"`
	Address  string   `json:"address"`
	Avatar   string   `json:"avatar,omitempty"`
	Gender   string   `json:"gender"`
	Age      int      `json:"age"`
}

// View returns the redacted projection of the user.
func (u *User) View() UserView {
	return UserView{
		ID:       strconv.FormatInt(u.ID, 10),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		Type:     u.Type,
		IsVerify: u.IsVerify,
		Address:  u.Address,
		Avatar:   u.Avatar,
		Gender:   u.Gender,
		Age:      u.Age,
	}
}
