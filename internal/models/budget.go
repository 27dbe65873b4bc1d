package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a monthly spending allocation for an expense category. At most
// one active budget exists per (user, category); edits in a later month
// close the record and open a new one.
type Budget struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_active_category,where:is_active = true AND deleted_at IS NULL" json:"userId"`
	CategoryID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_active_category,where:is_active = true AND deleted_at IS NULL" json:"categoryId"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	EffectiveFrom time.Time       `gorm:"type:date;not null" json:"effectiveFrom"`
	EffectiveTo   *time.Time      `gorm:"type:date" json:"effectiveTo"`
	IsActive      bool            `gorm:"not null" json:"isActive"`
}
