package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/progress"
)

// dashboardService aggregates budget, goal and transaction figures for the dashboard.
type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db, now: time.Now}
}

// GetTodaySpending totals today's expense transactions.
func (s *dashboardService) GetTodaySpending(ctx context.Context, userID string) (decimal.Decimal, error) {
	db := s.db.WithContext(ctx)
	ids, err := categoryIDsByType(db, userID, models.CategoryTypeExpense)
	if err != nil {
		return decimal.Zero, err
	}
	today := progress.Day(s.now())
	return sumAmount(db, userID, ids, today, today.AddDate(0, 0, 1))
}

// GetMonthlyBudgetRemaining returns total allocation minus month-to-date
// spend across active budgets, never below zero.
func (s *dashboardService) GetMonthlyBudgetRemaining(ctx context.Context, userID string) (decimal.Decimal, error) {
	budget, spent, err := s.budgetTotals(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(decimal.Zero, budget.Sub(spent)), nil
}

// GetGoalsProgress sums clamped progress and targets across active goals.
func (s *dashboardService) GetGoalsProgress(ctx context.Context, userID string) (*GoalsProgressSummary, error) {
	db := s.db.WithContext(ctx)
	var goals []models.Goal
	err := db.Where("user_id = ? AND status = ?", userID, models.GoalStatusActive).Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	summary := &GoalsProgressSummary{Current: decimal.Zero, Target: decimal.Zero}
	for i := range goals {
		g := &goals[i]
		contributed, err := sumAmountThrough(db, userID, []string{g.CategoryID}, g.StartDate, now)
		if err != nil {
			return nil, err
		}
		res := progress.Goal(g.TargetAmount, g.CurrentAmount, contributed, g.EndDate, now)
		summary.Current = summary.Current.Add(res.Current)
		summary.Target = summary.Target.Add(g.TargetAmount)
	}
	summary.Percentage = progress.Percentage(summary.Current, summary.Target)
	return summary, nil
}

// GetSpendingScore rates month-to-date spend against active budgets.
func (s *dashboardService) GetSpendingScore(ctx context.Context, userID string) (int, error) {
	budget, spent, err := s.budgetTotals(ctx, userID)
	if err != nil {
		return 0, err
	}
	return progress.SpendingScore(budget, spent), nil
}

// GetStats computes the four headline figures concurrently.
func (s *dashboardService) GetStats(ctx context.Context, userID string) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.GetTodaySpending(gctx, userID)
		stats.TodaySpending = v
		return err
	})
	g.Go(func() error {
		v, err := s.GetMonthlyBudgetRemaining(gctx, userID)
		stats.MonthlyBudgetRemaining = v
		return err
	})
	g.Go(func() error {
		v, err := s.GetGoalsProgress(gctx, userID)
		if v != nil {
			stats.GoalsProgress = *v
		}
		return err
	})
	g.Go(func() error {
		v, err := s.GetSpendingScore(gctx, userID)
		stats.SpendingVsBudgetScore = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetSummary reports net worth and month-to-date cash flow. Net worth is the
// opening balance of net-worth accounts plus their income minus their expenses.
func (s *dashboardService) GetSummary(ctx context.Context, userID string) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)

	incomeIDs, err := categoryIDsByType(db, userID, models.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}
	expenseIDs, err := categoryIDsByType(db, userID, models.CategoryTypeExpense)
	if err != nil {
		return nil, err
	}

	var accountIDs []string
	if err := db.Model(&models.Account{}).
		Where("user_id = ? AND include_in_networth = ?", userID, true).
		Pluck("id", &accountIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	opening := decimal.Zero
	if len(accountIDs) > 0 {
		row := db.Model(&models.Account{}).
			Select("COALESCE(SUM(opening_balance), 0)").
			Where("id IN ?", accountIDs).
			Row()
		if err := row.Scan(&opening); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	inflow, err := sumAccounts(db, userID, accountIDs, incomeIDs)
	if err != nil {
		return nil, err
	}
	outflow, err := sumAccounts(db, userID, accountIDs, expenseIDs)
	if err != nil {
		return nil, err
	}

	start, end := progress.MonthToDate(s.now())
	monthlyIncome, err := sumAmount(db, userID, incomeIDs, start, end)
	if err != nil {
		return nil, err
	}
	monthlySpend, err := sumAmount(db, userID, expenseIDs, start, end)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalBalance:  opening.Add(inflow).Sub(outflow),
		MonthlySpend:  monthlySpend,
		MonthlyIncome: monthlyIncome,
		NetSavings:    monthlyIncome.Sub(monthlySpend),
	}, nil
}

// budgetTotals returns the summed allocation and month-to-date spend of the
// user's active budgets.
func (s *dashboardService) budgetTotals(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error) {
	db := s.db.WithContext(ctx)
	var budgets []models.Budget
	if err := db.Where("user_id = ? AND is_active = ?", userID, true).Find(&budgets).Error; err != nil {
		return decimal.Zero, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	ids := make([]string, 0, len(budgets))
	for i := range budgets {
		total = total.Add(budgets[i].Amount)
		ids = append(ids, budgets[i].CategoryID)
	}

	start, end := progress.MonthToDate(s.now())
	spent, err := sumAmount(db, userID, ids, start, end)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return total, spent, nil
}

// sumAccounts totals all transactions on the given accounts in the given categories.
func sumAccounts(db *gorm.DB, userID string, accountIDs, categoryIDs []string) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(accountIDs) == 0 || len(categoryIDs) == 0 {
		return total, nil
	}
	row := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND account_id IN ? AND category_id IN ?", userID, accountIDs, categoryIDs).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
