package models

import "time"

// RefreshToken is a long-lived opaque credential. Only its SHA-256 hash is stored.
type RefreshToken struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"userId"`
	TokenHash  string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	DeviceInfo string     `json:"deviceInfo,omitempty"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// Usable reports whether the token can still be exchanged at now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// PasswordResetToken is a single-use credential emailed to the user.
type PasswordResetToken struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null" json:"used"`
}
