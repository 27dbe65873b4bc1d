package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"expensetracker/internal/config"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db, now: time.Now}
}

// CreateUser registers a new user. A password is required only for local users.
func (s *userService) CreateUser(input NewUserInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}
	provider := input.Provider
	if provider == "" {
		provider = models.AuthProviderLocal
	}
	if provider == models.AuthProviderLocal && input.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password is required")
	}

	normalized := normalizeEmail(email)
	var count int64
	if err := s.db.Model(&models.User{}).Where("normalized_email = ?", normalized).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	cfg := config.Get()
	user := &models.User{
		Email:           email,
		NormalizedEmail: normalized,
		FullName:        strings.TrimSpace(input.FullName),
		Phone:           input.Phone,
		Locale:          cfg.DefaultLocale,
		Timezone:        cfg.DefaultTimezone,
		IsActive:        true,
		IsEmailVerified: input.IsEmailVerified,
		Provider:        provider,
		ProviderID:      input.ProviderID,
	}

	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.db.Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	q := s.db.Where("normalized_email = ? AND is_active = ?", normalizeEmail(email), true)
	if err := firstOrErr(q, &user, apperrors.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := firstOrErr(s.db.Where("id = ?", id), &user, apperrors.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByProvider retrieves a user by an external provider identity.
func (s *userService) GetUserByProvider(provider models.AuthProvider, providerID string) (*models.User, error) {
	var user models.User
	q := s.db.Where("provider_id = ? AND provider IN ?", providerID, []models.AuthProvider{provider, models.AuthProviderMixed})
	if err := firstOrErr(q, &user, apperrors.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	if !user.HasLocalPassword() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password))
	return err == nil
}

// AttemptLogin verifies credentials and stamps the last login time.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasLocalPassword() {
		return nil, apperrors.ErrNoLocalPassword
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// SetPassword replaces the user's password hash.
func (s *userService) SetPassword(userID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// LinkProvider attaches an external identity to an existing user. Users
// with a local password become Mixed.
func (s *userService) LinkProvider(user *models.User, provider models.AuthProvider, providerID string) error {
	next := provider
	if user.HasLocalPassword() {
		next = models.AuthProviderMixed
	}
	updates := map[string]interface{}{
		"provider":          next,
		"provider_id":       providerID,
		"is_email_verified": true,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Provider = next
	user.ProviderID = &providerID
	user.IsEmailVerified = true
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hash), nil
}
