package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService services.AuthServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Email    string  `json:"email" binding:"required,email,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Password string  `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SocialLoginRequest carries a token issued by an external identity provider.
type SocialLoginRequest struct {
	Provider string `json:"provider" binding:"required,social_provider"`
	Token    string `json:"token" binding:"required"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=128"`
}

// UserSummary is the public part of a user returned on sign-in.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	OK           bool        `json:"ok"`
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
}

func newAuthResponse(res *services.AuthResult) AuthResponse {
	return AuthResponse{
		OK: true,
		User: UserSummary{
			ID:    res.User.ID,
			Name:  res.User.FullName,
			Email: res.User.Email,
		},
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
	}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a local user and sign them in
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and tokens issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	res, err := h.authService.Register(services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(res))
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	res, err := h.authService.Login(req.Email, req.Password, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Social handles sign-in with Google or Facebook
// @Summary     Social login
// @Description Sign in with a Google ID token or Facebook access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SocialLoginRequest true "Provider and token"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid social token"
// @Failure     409 {object} ErrorResponse "Email exists without social link"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/social [post]
func (h *AuthHandler) Social(c *gin.Context) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	res, err := h.authService.SocialLogin(c.Request.Context(), req.Provider, req.Token, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Refresh rotates a refresh token
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new access and refresh token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New tokens"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	res, err := h.authService.Refresh(req.RefreshToken, c.Request.UserAgent())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

// Logout revokes a refresh token
// @Summary     Logout
// @Description Revoke a refresh token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} MessageResponse "Logged out"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// ForgotPassword starts a password reset
// @Summary     Forgot password
// @Description Email a password reset link. Always succeeds for well-formed input.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} MessageResponse "Reset link sent if the account exists"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

// ResetPassword completes a password reset
// @Summary     Reset password
// @Description Set a new password using a reset token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Reset token and new password"
// @Success     200 {object} MessageResponse "Password reset"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
