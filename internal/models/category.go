package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "Income"
	CategoryTypeExpense CategoryType = "Expense"
	// CategoryTypeSavingsGoal marks transactions that contribute toward a goal.
	CategoryTypeSavingsGoal CategoryType = "TargetedSavingsGoal"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeSavingsGoal:
		return true
	}
	return false
}

// Category represents a transaction category
type Category struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name,where:deleted_at IS NULL" json:"userId"`
	Name        string       `gorm:"not null;uniqueIndex:idx_categories_user_name,where:deleted_at IS NULL" json:"name"`
	Description string       `gorm:"not null;default:''" json:"description"`
	ParentID    *string      `gorm:"type:uuid" json:"parentId,omitempty"`
	Type        CategoryType `gorm:"not null" json:"type"`
}

// SubCategory refines a category. It holds the parent id only.
type SubCategory struct {
	Base
	CategoryID  string `gorm:"type:uuid;not null;index" json:"categoryId"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`
}
