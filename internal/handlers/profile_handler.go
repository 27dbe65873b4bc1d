package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/services"
)

// ProfileHandler serves the signed-in user's own profile.
type ProfileHandler struct {
	profileService services.ProfileServicer
	auditService   services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService services.ProfileServicer, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, auditService: auditService}
}

// UpdateProfileRequest holds the editable profile fields. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	FullName          *string `json:"fullName" binding:"omitempty,min=1,max=200"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	ProfileImage      *string `json:"profileImage" binding:"omitempty,max=2048"`
	DefaultCurrencyID *string `json:"defaultCurrencyId" binding:"omitempty,uuid"`
	DefaultAccountID  *string `json:"defaultAccountId" binding:"omitempty,uuid"`
	Locale            *string `json:"locale" binding:"omitempty,max=10"`
	Timezone          *string `json:"timezone" binding:"omitempty,max=50"`
}

// ChangePasswordRequest represents a password change.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=6,max=128"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

// ProfileImageRequest carries an image URL or data URI.
type ProfileImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// GetProfile returns the user's profile
// @Summary     Get profile
// @Description Get the authenticated user's profile with default currency and account
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ProfileView "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the user's profile
// @Summary     Update profile
// @Description Update profile fields. The default currency and account must belong to the user.
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} services.ProfileView "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	profile, err := h.profileService.UpdateProfile(userID, services.ProfileUpdate{
		FullName:          req.FullName,
		Phone:             req.Phone,
		ProfileImage:      req.ProfileImage,
		DefaultCurrencyID: req.DefaultCurrencyID,
		DefaultAccountID:  req.DefaultAccountID,
		Locale:            req.Locale,
		Timezone:          req.Timezone,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "profile", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, profile)
}

// ChangePassword changes the password of a local user
// @Summary     Change password
// @Description Change the password after verifying the current one
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChangePasswordRequest true "Current and new password"
// @Success     200 {object} MessageResponse "Password changed"
// @Failure     400 {object} ErrorResponse "Invalid input or incorrect password"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	if err := h.profileService.ChangePassword(userID, req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditPasswordChange, "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// SetProfileImage stores a new profile image
// @Summary     Set profile image
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ProfileImageRequest true "Image"
// @Success     200 {object} services.ProfileView "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile/image [put]
func (h *ProfileHandler) SetProfileImage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProfileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	profile, err := h.profileService.SetProfileImage(userID, req.Image)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetAccountsByCurrency lists the user's accounts in one currency
// @Summary     Accounts by currency
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Param       currencyId path string true "Currency ID"
// @Success     200 {array}  models.Account "Accounts"
// @Failure     400 {object} ErrorResponse "Invalid currency ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Router      /profile/accounts/{currencyId} [get]
func (h *ProfileHandler) GetAccountsByCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currencyID, err := parsePathID(c, "currencyId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.profileService.GetAccountsByCurrency(userID, currencyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}
