package models

// Currency is a user-defined currency the user keeps accounts in.
type Currency struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_currencies_user_code,where:deleted_at IS NULL" json:"userId"`
	Code   string `gorm:"size:3;not null;uniqueIndex:idx_currencies_user_code,where:deleted_at IS NULL" json:"code"`
	Symbol string `gorm:"not null;default:''" json:"symbol"`
	Name   string `gorm:"not null;default:''" json:"name"`
}
