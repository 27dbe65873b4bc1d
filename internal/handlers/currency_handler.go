package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/services"
)

// CurrencyHandler handles per-user currencies.
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
	auditService    services.AuditServicer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService services.CurrencyServicer, auditService services.AuditServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService, auditService: auditService}
}

// CurrencyRequest represents the request payload for creating or updating a currency.
type CurrencyRequest struct {
	Code   string `json:"code" binding:"required,len=3,iso4217"`
	Symbol string `json:"symbol" binding:"required,max=10"`
	Name   string `json:"name" binding:"required,max=100"`
}

// CreateCurrency adds a currency
// @Summary     Create currency
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CurrencyRequest true "Currency"
// @Success     201 {object} models.Currency "Currency created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate code"
// @Router      /currencies [post]
func (h *CurrencyHandler) CreateCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	currency, err := h.currencyService.CreateCurrency(userID, req.Code, req.Symbol, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "currency", currency.ID, c.ClientIP(),
		map[string]interface{}{"code": currency.Code})

	c.JSON(http.StatusCreated, currency)
}

// GetCurrencies lists the user's currencies
// @Summary     List currencies
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Currency "Currencies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies [get]
func (h *CurrencyHandler) GetCurrencies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currencies, err := h.currencyService.GetUserCurrencies(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, currencies)
}

// GetCurrency returns one currency
// @Summary     Get currency
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Currency ID"
// @Success     200 {object} models.Currency "Currency"
// @Failure     400 {object} ErrorResponse "Invalid currency ID"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Router      /currencies/{id} [get]
func (h *CurrencyHandler) GetCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	currency, err := h.currencyService.GetCurrencyByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, currency)
}

// UpdateCurrency replaces a currency
// @Summary     Update currency
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Currency ID"
// @Param       request body CurrencyRequest true "Currency"
// @Success     200 {object} models.Currency "Updated currency"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Failure     409 {object} ErrorResponse "Duplicate code"
// @Router      /currencies/{id} [put]
func (h *CurrencyHandler) UpdateCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	currency, err := h.currencyService.UpdateCurrency(userID, id, req.Code, req.Symbol, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "currency", id, c.ClientIP(),
		map[string]interface{}{"code": currency.Code})

	c.JSON(http.StatusOK, currency)
}

// DeleteCurrency removes an unused currency
// @Summary     Delete currency
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Currency ID"
// @Success     200 {object} MessageResponse "Currency deleted"
// @Failure     404 {object} ErrorResponse "Currency not found"
// @Failure     409 {object} ErrorResponse "Currency in use"
// @Router      /currencies/{id} [delete]
func (h *CurrencyHandler) DeleteCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.currencyService.DeleteCurrency(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "currency", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Currency deleted successfully"})
}
