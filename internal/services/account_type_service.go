package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// accountTypeService manages the shared account type lookup.
type accountTypeService struct {
	db *gorm.DB
}

// NewAccountTypeService creates a new AccountTypeServicer.
func NewAccountTypeService(db *gorm.DB) AccountTypeServicer {
	return &accountTypeService{db: db}
}

// CreateAccountType adds a new account type.
func (s *accountTypeService) CreateAccountType(name string, isCard bool) (*models.AccountType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	at := &models.AccountType{Name: name, IsCard: isCard}
	if err := s.db.Create(at).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type already exists")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return at, nil
}

// GetAccountTypes lists all account types by name.
func (s *accountTypeService) GetAccountTypes() ([]models.AccountType, error) {
	types := []models.AccountType{}
	if err := s.db.Order("name").Find(&types).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return types, nil
}

// GetAccountTypeByID returns one account type.
func (s *accountTypeService) GetAccountTypeByID(id string) (*models.AccountType, error) {
	var at models.AccountType
	if err := firstOrErr(s.db.Where("id = ?", id), &at, apperrors.ErrAccountTypeNotFound); err != nil {
		return nil, err
	}
	return &at, nil
}

// UpdateAccountType renames an account type and sets its card flag.
func (s *accountTypeService) UpdateAccountType(id, name string, isCard bool) (*models.AccountType, error) {
	at, err := s.GetAccountTypeByID(id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	if err := s.db.Model(at).Updates(map[string]interface{}{"name": name, "is_card": isCard}).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type already exists")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return at, nil
}

// DeleteAccountType removes an account type no account references.
func (s *accountTypeService) DeleteAccountType(id string) error {
	at, err := s.GetAccountTypeByID(id)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Account{}).Where("account_type_id = ?", at.ID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrAccountTypeInUse
	}

	if err := s.db.Delete(at).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
