package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// profileService manages the signed-in user's own profile.
type profileService struct {
	db    *gorm.DB
	users UserServicer
}

// NewProfileService creates a new ProfileServicer.
func NewProfileService(db *gorm.DB, users UserServicer) ProfileServicer {
	return &profileService{db: db, users: users}
}

// GetProfile loads the user with their default currency and account.
func (s *profileService) GetProfile(userID string) (*ProfileView, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	return s.view(user)
}

// UpdateProfile applies the non-nil fields of update. The default currency
// and account must belong to the user.
func (s *profileService) UpdateProfile(userID string, update ProfileUpdate) (*ProfileView, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if update.Phone != nil {
		updates["phone"] = *update.Phone
	}
	if update.ProfileImage != nil {
		updates["profile_image"] = *update.ProfileImage
	}
	if update.DefaultCurrencyID != nil {
		if !s.owns(&models.Currency{}, userID, *update.DefaultCurrencyID) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid currency selected")
		}
		updates["default_currency_id"] = *update.DefaultCurrencyID
	}
	if update.DefaultAccountID != nil {
		if !s.owns(&models.Account{}, userID, *update.DefaultAccountID) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid account selected")
		}
		updates["default_account_id"] = *update.DefaultAccountID
	}
	if update.Locale != nil {
		updates["locale"] = *update.Locale
	}
	if update.Timezone != nil {
		updates["timezone"] = *update.Timezone
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetProfile(userID)
}

// ChangePassword replaces the password of a local user after checking the
// current one.
func (s *profileService) ChangePassword(userID, currentPassword, newPassword, confirmPassword string) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !user.HasLocalPassword() {
		return apperrors.ErrNotLocalUser
	}
	if !s.users.VerifyPassword(user, currentPassword) {
		return apperrors.ErrIncorrectPassword
	}
	if newPassword != confirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	if len(newPassword) < 6 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}
	return s.users.SetPassword(userID, newPassword)
}

// SetProfileImage stores the image reference for the user.
func (s *profileService) SetProfileImage(userID, image string) (*ProfileView, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "image is required")
	}
	return s.UpdateProfile(userID, ProfileUpdate{ProfileImage: &image})
}

// GetAccountsByCurrency lists the user's accounts held in currencyID.
func (s *profileService) GetAccountsByCurrency(userID, currencyID string) ([]models.Account, error) {
	if !s.owns(&models.Currency{}, userID, currencyID) {
		return nil, apperrors.ErrCurrencyNotFound
	}
	accounts := []models.Account{}
	err := s.db.Where("user_id = ? AND currency_id = ?", userID, currencyID).
		Order("name").
		Find(&accounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

func (s *profileService) owns(model interface{}, userID, id string) bool {
	var count int64
	s.db.Model(model).Where("id = ? AND user_id = ?", id, userID).Count(&count)
	return count > 0
}

func (s *profileService) view(user *models.User) (*ProfileView, error) {
	view := &ProfileView{User: *user}
	if user.DefaultCurrencyID != nil {
		var currency models.Currency
		err := s.db.Where("id = ?", *user.DefaultCurrencyID).Limit(1).Find(&currency).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if currency.ID != "" {
			view.DefaultCurrency = &currency
		}
	}
	if user.DefaultAccountID != nil {
		var account models.Account
		err := s.db.Where("id = ?", *user.DefaultAccountID).Limit(1).Find(&account).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if account.ID != "" {
			view.DefaultAccount = &account
		}
	}
	return view, nil
}
