package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// currencyService handles per-user currencies.
type currencyService struct {
	db *gorm.DB
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(db *gorm.DB) CurrencyServicer {
	return &currencyService{db: db}
}

// CreateCurrency adds a currency. Codes are unique per user.
func (s *currencyService) CreateCurrency(userID, code, symbol, name string) (*models.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.ensureCodeFree(userID, code, ""); err != nil {
		return nil, err
	}

	currency := &models.Currency{
		UserID: userID,
		Code:   code,
		Symbol: symbol,
		Name:   name,
	}
	if err := s.db.Create(currency).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrDuplicateCurrency
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currency, nil
}

// GetUserCurrencies lists the user's currencies ordered by code.
func (s *currencyService) GetUserCurrencies(userID string) ([]models.Currency, error) {
	currencies := []models.Currency{}
	if err := s.db.Where("user_id = ?", userID).Order("code").Find(&currencies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currencies, nil
}

// GetCurrencyByID returns a currency if it belongs to the user.
func (s *currencyService) GetCurrencyByID(userID, currencyID string) (*models.Currency, error) {
	var currency models.Currency
	q := s.db.Where("id = ? AND user_id = ?", currencyID, userID)
	if err := firstOrErr(q, &currency, apperrors.ErrCurrencyNotFound); err != nil {
		return nil, err
	}
	return &currency, nil
}

// UpdateCurrency replaces the currency's code, symbol and name.
func (s *currencyService) UpdateCurrency(userID, currencyID, code, symbol, name string) (*models.Currency, error) {
	currency, err := s.GetCurrencyByID(userID, currencyID)
	if err != nil {
		return nil, err
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code != currency.Code {
		if err := s.ensureCodeFree(userID, code, currency.ID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{"code": code, "symbol": symbol, "name": name}
	if err := s.db.Model(currency).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrDuplicateCurrency
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currency, nil
}

// DeleteCurrency removes a currency that no account uses.
func (s *currencyService) DeleteCurrency(userID, currencyID string) error {
	currency, err := s.GetCurrencyByID(userID, currencyID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Account{}).Where("currency_id = ?", currency.ID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCurrencyInUse
	}

	if err := s.db.Delete(currency).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *currencyService) ensureCodeFree(userID, code, excludeID string) error {
	q := s.db.Model(&models.Currency{}).Where("user_id = ? AND code = ?", userID, code)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCurrency
	}
	return nil
}
