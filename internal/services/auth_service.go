package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"expensetracker/internal/config"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
)

const (
	refreshTokenBytes = 32
	resetTokenBytes   = 48
)

// authService handles sign-up, sign-in and the refresh and reset token lifecycle.
type authService struct {
	db       *gorm.DB
	users    UserServicer
	verifier SocialVerifier
	mailer   EmailSender
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(db *gorm.DB, users UserServicer, verifier SocialVerifier, mailer EmailSender, cfg *config.Config) AuthServicer {
	return &authService{
		db:       db,
		users:    users,
		verifier: verifier,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Register creates a local user, signs them in and sends a welcome email.
func (s *authService) Register(input RegisterInput, device string) (*AuthResult, error) {
	user, err := s.users.CreateUser(NewUserInput{
		FullName: input.Name,
		Email:    input.Email,
		Password: input.Password,
		Phone:    input.Phone,
		Provider: models.AuthProviderLocal,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issue(s.db, user, device)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcome(context.Background(), user.Email, user.FullName); err != nil {
		logger.Get().Warnw("failed to send welcome email", "error", err, "user_id", user.ID)
	}
	return result, nil
}

// Login verifies a local password and issues tokens.
func (s *authService) Login(email, password, device string) (*AuthResult, error) {
	user, err := s.users.AttemptLogin(email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(s.db, user, device)
}

// SocialLogin signs in with a Google or Facebook token. Identities are
// matched by provider id first, then by email when auto-linking is enabled.
func (s *authService) SocialLogin(ctx context.Context, provider, token, device string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, provider, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByProvider(identity.Provider, identity.ProviderID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	if user == nil {
		user, err = s.users.GetUserByEmail(identity.Email)
		switch {
		case err == nil:
			if !s.cfg.SocialAutoLink {
				return nil, apperrors.ErrSocialLinkRequired
			}
			if err := s.users.LinkProvider(user, identity.Provider, identity.ProviderID); err != nil {
				return nil, err
			}
		case errors.Is(err, apperrors.ErrUserNotFound):
			providerID := identity.ProviderID
			user, err = s.users.CreateUser(NewUserInput{
				FullName:        identity.Name,
				Email:           identity.Email,
				Provider:        identity.Provider,
				ProviderID:      &providerID,
				IsEmailVerified: true,
			})
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	now := s.now().UTC()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now

	return s.issue(s.db, user, device)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same transaction that stores its replacement.
func (s *authService) Refresh(refreshToken, device string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	var result *AuthResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.RefreshToken
		q := tx.Where("token_hash = ?", middleware.HashToken(refreshToken))
		if err := firstOrErr(q, &existing, apperrors.ErrInvalidRefreshToken); err != nil {
			return err
		}

		now := s.now().UTC()
		if !existing.Usable(now) {
			return apperrors.ErrInvalidRefreshToken
		}

		// Conditional update so a token cannot be rotated twice concurrently.
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", existing.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvalidRefreshToken
		}

		var user models.User
		if err := firstOrErr(tx.Where("id = ? AND is_active = ?", existing.UserID, true), &user, apperrors.ErrInvalidRefreshToken); err != nil {
			return err
		}

		if device == "" {
			device = existing.DeviceInfo
		}
		issued, err := s.issue(tx, &user, device)
		if err != nil {
			return err
		}
		result = issued
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes the refresh token if it is known. Unknown tokens are ignored.
func (s *authService) Logout(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", middleware.HashToken(refreshToken)).
		Update("revoked_at", s.now().UTC()).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ForgotPassword emails a single-use reset link. Unknown addresses succeed
// silently so callers cannot tell which emails have accounts.
func (s *authService) ForgotPassword(email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := middleware.NewOpaqueToken(resetTokenBytes)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	reset := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: middleware.HashToken(token),
		ExpiresAt: s.now().UTC().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.db.Create(reset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(context.Background(), user.Email, user.FullName, link); err != nil {
		logger.Get().Warnw("failed to send password reset email", "error", err, "user_id", user.ID)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. All of the
// user's refresh tokens are revoked.
func (s *authService) ResetPassword(token, newPassword string) error {
	if token == "" {
		return apperrors.ErrInvalidResetToken
	}
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new password is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reset, err := s.findResetToken(tx, token)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if reset.Used || !now.Before(reset.ExpiresAt) {
			return apperrors.ErrInvalidResetToken
		}

		hash, err := hashPassword(newPassword)
		if err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", reset.UserID).Update("password_hash", hash)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvalidResetToken
		}

		if err := tx.Model(reset).Update("used", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		err = tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", reset.UserID).
			Update("revoked_at", now).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// findResetToken looks the token up as given, then URL-unescaped, since
// links copied out of mail clients sometimes arrive still encoded.
func (s *authService) findResetToken(tx *gorm.DB, token string) (*models.PasswordResetToken, error) {
	candidates := []string{token}
	if decoded, err := url.PathUnescape(token); err == nil && decoded != token {
		candidates = append(candidates, decoded)
	}

	for _, c := range candidates {
		var reset models.PasswordResetToken
		err := tx.Where("token_hash = ?", middleware.HashToken(c)).First(&reset).Error
		if err == nil {
			return &reset, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil, apperrors.ErrInvalidResetToken
}

// issue signs an access token and stores a fresh refresh token using db,
// which may be an open transaction.
func (s *authService) issue(db *gorm.DB, user *models.User, device string) (*AuthResult, error) {
	access, err := middleware.GenerateAccessToken(user, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	refresh, err := middleware.NewOpaqueToken(refreshTokenBytes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	row := &models.RefreshToken{
		UserID:     user.ID,
		TokenHash:  middleware.HashToken(refresh),
		DeviceInfo: device,
		ExpiresAt:  s.now().UTC().Add(s.cfg.RefreshTokenTTL),
	}
	if err := db.Create(row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL / time.Second),
	}, nil
}
