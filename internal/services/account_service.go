package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account. The account type must exist and the
// currency must belong to the user.
func (s *accountService) CreateAccount(userID string, input AccountInput) (*models.Account, error) {
	if err := s.validate(userID, input); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:            userID,
		Name:              strings.TrimSpace(input.Name),
		AccountTypeID:     input.AccountTypeID,
		CurrencyID:        input.CurrencyID,
		IsSavings:         input.IsSavings,
		OpeningBalance:    input.OpeningBalance,
		IncludeInNetworth: input.IncludeInNetworth,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts lists the user's accounts by name.
func (s *accountService) GetUserAccounts(userID string) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID returns an account if it belongs to the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	q := s.db.Where("id = ? AND user_id = ?", accountID, userID)
	if err := firstOrErr(q, &account, apperrors.ErrAccountNotFound); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount replaces the writable fields of an account.
func (s *accountService) UpdateAccount(userID, accountID string, input AccountInput) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":                strings.TrimSpace(input.Name),
		"account_type_id":     input.AccountTypeID,
		"currency_id":         input.CurrencyID,
		"is_savings":          input.IsSavings,
		"opening_balance":     input.OpeningBalance,
		"include_in_networth": input.IncludeInNetworth,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetAccountByID(userID, accountID)
}

// DeleteAccount removes an account that has no transactions.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrAccountInUse
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *accountService) validate(userID string, input AccountInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	var at models.AccountType
	if err := firstOrErr(s.db.Where("id = ?", input.AccountTypeID), &at, apperrors.ErrAccountTypeNotFound); err != nil {
		return err
	}
	var currency models.Currency
	q := s.db.Where("id = ? AND user_id = ?", input.CurrencyID, userID)
	if err := firstOrErr(q, &currency, apperrors.ErrCurrencyNotFound); err != nil {
		return err
	}
	return nil
}
