package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/progress"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, now: time.Now}
}

// CreateBudget opens a budget for an expense category, effective from the
// first of the current month.
func (s *budgetService) CreateBudget(userID, categoryID string, amount decimal.Decimal) (*BudgetView, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidBudgetAmount
	}

	var category models.Category
	q := s.db.Where("id = ? AND user_id = ?", categoryID, userID)
	if err := firstOrErr(q, &category, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	if category.Type != models.CategoryTypeExpense {
		return nil, apperrors.ErrBudgetCategoryType
	}

	budget := &models.Budget{
		UserID:        userID,
		CategoryID:    categoryID,
		Amount:        amount,
		EffectiveFrom: progress.MonthStart(s.now()),
		IsActive:      true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		active, err := hasActiveBudget(tx, userID, categoryID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.ErrActiveBudgetExists
		}
		if err := tx.Create(budget).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.ErrActiveBudgetExists
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BudgetView{Budget: *budget, Category: &category}, nil
}

// UpdateBudget changes the allocation of an active budget. Within the month
// the budget started the amount is edited in place; in a later month the
// old record is closed and a new one opened from the first of this month.
func (s *budgetService) UpdateBudget(userID, budgetID string, amount decimal.Decimal) (*BudgetView, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidBudgetAmount
	}

	now := s.now()
	var result *models.Budget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		budget, err := ownedBudget(forUpdate(tx), userID, budgetID)
		if err != nil {
			return err
		}
		if !budget.IsActive {
			return apperrors.ErrBudgetNotActive
		}

		if progress.SameMonth(budget.EffectiveFrom, now) {
			if err := tx.Model(budget).Update("amount", amount).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			budget.Amount = amount
			result = budget
			return nil
		}

		closedAt := progress.PreviousMonthEnd(now)
		closing := map[string]interface{}{"effective_to": closedAt, "is_active": false}
		if err := tx.Model(budget).Updates(closing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		next := &models.Budget{
			UserID:        budget.UserID,
			CategoryID:    budget.CategoryID,
			Amount:        amount,
			EffectiveFrom: progress.MonthStart(now),
			IsActive:      true,
		}
		if err := tx.Create(next).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.ErrActiveBudgetExists
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := s.views([]models.Budget{*result})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// GetActiveBudgets lists the user's active budgets.
func (s *budgetService) GetActiveBudgets(userID string) ([]BudgetView, error) {
	budgets, err := s.activeBudgets(userID)
	if err != nil {
		return nil, err
	}
	return s.views(budgets)
}

// GetBudgetHistory lists every budget the user has had, newest first.
func (s *budgetService) GetBudgetHistory(userID string) ([]BudgetView, error) {
	var budgets []models.Budget
	err := s.db.Where("user_id = ?", userID).
		Order("effective_from DESC").
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.views(budgets)
}

// HasActiveBudget reports whether the user has an active budget for the category.
func (s *budgetService) HasActiveBudget(userID, categoryID string) (bool, error) {
	return hasActiveBudget(s.db, userID, categoryID)
}

// ComputeBudgetStatus derives the month-to-date standing of a budget.
func (s *budgetService) ComputeBudgetStatus(budget *models.Budget) (*BudgetStatus, error) {
	cats, err := categoriesByID(s.db, []string{budget.CategoryID})
	if err != nil {
		return nil, err
	}
	return s.status(budget, cats[budget.CategoryID])
}

// ComputeAllBudgetStatuses derives the standing of every active budget.
func (s *budgetService) ComputeAllBudgetStatuses(userID string) ([]BudgetStatus, error) {
	budgets, err := s.activeBudgets(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(budgets))
	for i := range budgets {
		ids[i] = budgets[i].CategoryID
	}
	cats, err := categoriesByID(s.db, ids)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for i := range budgets {
		st, err := s.status(&budgets[i], cats[budgets[i].CategoryID])
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, nil
}

// GetBudgetStatusByCategory derives the standing of the active budget for a category.
func (s *budgetService) GetBudgetStatusByCategory(userID, categoryID string) (*BudgetStatus, error) {
	var budget models.Budget
	q := s.db.Where("user_id = ? AND category_id = ? AND is_active = ?", userID, categoryID, true)
	if err := firstOrErr(q, &budget, apperrors.ErrNoActiveBudgetForCat); err != nil {
		return nil, err
	}
	return s.ComputeBudgetStatus(&budget)
}

// DeleteBudget removes a budget owned by the user.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := ownedBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *budgetService) status(budget *models.Budget, category *models.Category) (*BudgetStatus, error) {
	start, end := progress.MonthToDate(s.now())
	spent, err := sumAmount(s.db, budget.UserID, []string{budget.CategoryID}, start, end)
	if err != nil {
		return nil, err
	}

	res := progress.Budget(budget.Amount, spent)
	st := &BudgetStatus{
		BudgetID:        budget.ID,
		CategoryID:      budget.CategoryID,
		AllocatedAmount: budget.Amount,
		SpentAmount:     spent,
		RemainingAmount: res.Remaining,
		PercentageUsed:  res.PercentageUsed,
		EffectiveFrom:   budget.EffectiveFrom,
		EffectiveTo:     budget.EffectiveTo,
		IsActive:        budget.IsActive,
		Status:          res.Status,
		StatusColor:     res.Color,
	}
	if category != nil {
		st.CategoryName = category.Name
	}
	return st, nil
}

// ownedBudget loads a budget by id, distinguishing missing from foreign.
func ownedBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := firstOrErr(db.Where("id = ?", budgetID), &budget, apperrors.ErrBudgetNotFound); err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &budget, nil
}

func (s *budgetService) activeBudgets(userID string) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("effective_from DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// views pairs budgets with their resolved categories.
func (s *budgetService) views(budgets []models.Budget) ([]BudgetView, error) {
	ids := make([]string, len(budgets))
	for i := range budgets {
		ids[i] = budgets[i].CategoryID
	}
	cats, err := categoriesByID(s.db, ids)
	if err != nil {
		return nil, err
	}

	items := make([]BudgetView, len(budgets))
	for i := range budgets {
		items[i] = BudgetView{Budget: budgets[i], Category: cats[budgets[i].CategoryID]}
	}
	return items, nil
}

func hasActiveBudget(db *gorm.DB, userID, categoryID string) (bool, error) {
	var count int64
	err := db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND is_active = ?", userID, categoryID, true).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
