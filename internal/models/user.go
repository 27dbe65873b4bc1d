package models

import "time"

// AuthProvider identifies how a user signs in.
type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "Local"
	AuthProviderGoogle   AuthProvider = "Google"
	AuthProviderFacebook AuthProvider = "Facebook"
	// AuthProviderMixed marks a local account that has also been linked to a social provider.
	AuthProviderMixed AuthProvider = "Mixed"
)

// User represents the user model in the database
type User struct {
	Base
	Email             string       `gorm:"not null" json:"email"`
	NormalizedEmail   string       `gorm:"not null;uniqueIndex:idx_users_normalized_email,where:deleted_at IS NULL" json:"-"`
	PasswordHash      *string      `json:"-"`
	FullName          string       `gorm:"not null;default:''" json:"fullName"`
	Phone             *string      `json:"phone,omitempty"`
	ProfileImage      *string      `json:"profileImage,omitempty"`
	DefaultCurrencyID *string      `gorm:"type:uuid" json:"defaultCurrencyId,omitempty"`
	DefaultAccountID  *string      `gorm:"type:uuid" json:"defaultAccountId,omitempty"`
	Locale            string       `gorm:"not null;default:'en-US'" json:"locale"`
	Timezone          string       `gorm:"not null;default:'UTC'" json:"timezone"`
	IsActive          bool         `gorm:"not null" json:"isActive"`
	IsEmailVerified   bool         `gorm:"not null" json:"isEmailVerified"`
	Provider          AuthProvider `gorm:"not null;default:'Local';index:idx_users_provider" json:"provider"`
	ProviderID        *string      `gorm:"index:idx_users_provider" json:"-"`
	LastLoginAt       *time.Time   `json:"lastLoginAt,omitempty"`
}

// HasLocalPassword reports whether the user can sign in with a password.
func (u *User) HasLocalPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
