package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, now: time.Now}
}

// CreateTransaction records a transaction against an account and category the user owns.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:          userID,
		AccountID:       input.AccountID,
		CategoryID:      input.CategoryID,
		SubCategoryID:   input.SubCategoryID,
		Description:     strings.TrimSpace(input.Description),
		Amount:          input.Amount,
		TransactionDate: input.TransactionDate,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetUserTransactions returns a filtered page of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.StartDate != nil {
		q = q.Where("transaction_date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		q = q.Where("transaction_date < ?", f.EndDate.UTC())
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	q := s.db.Where("id = ? AND user_id = ?", transactionID, userID)
	if err := firstOrErr(q, &transaction, apperrors.ErrTransactionNotFound); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateTransaction replaces the writable fields of a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"account_id":       input.AccountID,
		"category_id":      input.CategoryID,
		"sub_category_id":  input.SubCategoryID,
		"description":      strings.TrimSpace(input.Description),
		"amount":           input.Amount,
		"transaction_date": input.TransactionDate,
	}
	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction removes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SumAmount totals the user's transactions in one category over [start, end).
func (s *transactionService) SumAmount(userID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	return sumAmount(s.db, userID, []string{categoryID}, start, end)
}

// validate checks ownership of the referenced rows and normalises the date.
func (s *transactionService) validate(userID string, input *TransactionInput) error {
	if !input.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	var account models.Account
	q := s.db.Where("id = ? AND user_id = ?", input.AccountID, userID)
	if err := firstOrErr(q, &account, apperrors.ErrAccountNotFound); err != nil {
		return err
	}
	var category models.Category
	q = s.db.Where("id = ? AND user_id = ?", input.CategoryID, userID)
	if err := firstOrErr(q, &category, apperrors.ErrCategoryNotFound); err != nil {
		return err
	}
	if input.SubCategoryID != nil {
		var sub models.SubCategory
		q = s.db.Where("id = ? AND category_id = ?", *input.SubCategoryID, category.ID)
		if err := firstOrErr(q, &sub, apperrors.ErrSubCategoryNotFound); err != nil {
			return err
		}
	}

	if input.TransactionDate.IsZero() {
		input.TransactionDate = s.now()
	}
	input.TransactionDate = input.TransactionDate.UTC()
	return nil
}
