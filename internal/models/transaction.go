package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a financial transaction in the system
type Transaction struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index:idx_transactions_user_category_date" json:"userId"`
	AccountID       string          `gorm:"type:uuid;not null;index" json:"accountId"`
	CategoryID      string          `gorm:"type:uuid;not null;index:idx_transactions_user_category_date" json:"categoryId"`
	SubCategoryID   *string         `gorm:"type:uuid" json:"subCategoryId,omitempty"`
	Description     string          `gorm:"not null;default:''" json:"description"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	TransactionDate time.Time       `gorm:"not null;index:idx_transactions_user_category_date" json:"transactionDate"`
}
