package models

import "github.com/shopspring/decimal"

// AccountType is a shared lookup of account kinds (cash, bank, card, ...).
type AccountType struct {
	Base
	Name   string `gorm:"not null;uniqueIndex:idx_account_types_name,where:deleted_at IS NULL" json:"name"`
	IsCard bool   `gorm:"not null" json:"isCard"`
}

// DefaultAccountTypes are seeded by the initial migration.
var DefaultAccountTypes = []AccountType{
	{Name: "Cash"},
	{Name: "Bank Account"},
	{Name: "Credit Card", IsCard: true},
	{Name: "Savings"},
}

// Account represents a financial account in the system
type Account struct {
	Base
	UserID            string          `gorm:"type:uuid;not null;index" json:"userId"`
	Name              string          `gorm:"not null" json:"name"`
	AccountTypeID     string          `gorm:"type:uuid;not null" json:"accountTypeId"`
	CurrencyID        string          `gorm:"type:uuid;not null" json:"currencyId"`
	IsSavings         bool            `gorm:"not null" json:"isSavings"`
	OpeningBalance    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"openingBalance"`
	IncludeInNetworth bool            `gorm:"not null" json:"includeInNetworth"`
}
