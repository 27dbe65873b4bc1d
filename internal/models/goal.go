package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "Active"
	GoalStatusPaused    GoalStatus = "Paused"
	GoalStatusCompleted GoalStatus = "Completed"
	GoalStatusCancelled GoalStatus = "Cancelled"
)

// GoalPriority orders goals in progress listings.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "Low"
	GoalPriorityMedium GoalPriority = "Medium"
	GoalPriorityHigh   GoalPriority = "High"
)

// Rank returns a sortable weight, higher is more urgent.
func (p GoalPriority) Rank() int {
	switch p {
	case GoalPriorityHigh:
		return 3
	case GoalPriorityMedium:
		return 2
	case GoalPriorityLow:
		return 1
	}
	return 0
}

// Goal is a savings target fed by transactions in a TargetedSavingsGoal category.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;uniqueIndex:idx_goals_active_category,where:status = 'Active' AND deleted_at IS NULL" json:"userId"`
	Name          string          `gorm:"not null" json:"name"`
	Description   *string         `json:"description"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"targetAmount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"currentAmount"`
	CategoryID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_goals_active_category,where:status = 'Active' AND deleted_at IS NULL" json:"categoryId"`
	StartDate     time.Time       `gorm:"not null" json:"startDate"`
	EndDate       *time.Time      `json:"endDate"`
	Tag           *string         `json:"tag"`
	Status        GoalStatus      `gorm:"not null" json:"status"`
	Priority      GoalPriority    `gorm:"not null" json:"priority"`
}
