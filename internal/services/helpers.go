package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// normalizeEmail returns the lookup form of an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicate reports whether err is a unique constraint violation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// forUpdate locks the rows a query loads until the transaction ends.
// SQLite has no row locks; its writers are already serialized.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// firstOrErr loads the first row matching the scoped query into dest,
// translating a missing row into notFound.
func firstOrErr(q *gorm.DB, dest interface{}, notFound *apperrors.AppError) error {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// sumAmount totals transaction amounts for a user's categories in [start, end).
func sumAmount(db *gorm.DB, userID string, categoryIDs []string, start, end time.Time) (decimal.Decimal, error) {
	return sumWindow(db, userID, categoryIDs, "transaction_date >= ? AND transaction_date < ?", start, end)
}

// sumAmountThrough totals transaction amounts for a user's categories in [start, end].
func sumAmountThrough(db *gorm.DB, userID string, categoryIDs []string, start, end time.Time) (decimal.Decimal, error) {
	return sumWindow(db, userID, categoryIDs, "transaction_date >= ? AND transaction_date <= ?", start, end)
}

func sumWindow(db *gorm.DB, userID string, categoryIDs []string, window string, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(categoryIDs) == 0 {
		return total, nil
	}
	row := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id IN ?", userID, categoryIDs).
		Where(window, start.UTC(), end.UTC()).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// categoryIDsByType lists the ids of a user's categories of the given type.
func categoryIDsByType(db *gorm.DB, userID string, categoryType models.CategoryType) ([]string, error) {
	var ids []string
	err := db.Model(&models.Category{}).
		Where("user_id = ? AND type = ?", userID, categoryType).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// categoriesByID loads the given categories keyed by id.
func categoriesByID(db *gorm.DB, ids []string) (map[string]*models.Category, error) {
	out := make(map[string]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var cats []models.Category
	if err := db.Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range cats {
		out[cats[i].ID] = &cats[i]
	}
	return out, nil
}
