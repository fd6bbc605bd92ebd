package models

import "strings"

// Credentials identify a user against the identity provider. They are never persisted.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=5"`
}

// Normalize trims the e-mail; passwords are taken verbatim.
func (c Credentials) Normalize() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// Profile is the editable part of an account.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"nome" validate:"min=2"`
}

// Normalize trims the display name.
func (p Profile) Normalize() Profile {
	p.Name = strings.TrimSpace(p.Name)
	return p
}

// AuthUser is the identity resolved from a bearer token.
type AuthUser struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}
