package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensetracker/internal/services"
)

// AccountHandler handles account-related requests
type AccountHandler struct {
	accountService     services.AccountServicer
	accountTypeService services.AccountTypeServicer
	auditService       services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService services.AccountServicer, accountTypeService services.AccountTypeServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		accountTypeService: accountTypeService,
		auditService:       auditService,
	}
}

// AccountRequest represents the request payload for creating or updating an account
type AccountRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=100"`
	AccountTypeID     string          `json:"accountTypeId" binding:"required,uuid"`
	CurrencyID        string          `json:"currencyId" binding:"required,uuid"`
	IsSavings         bool            `json:"isSavings"`
	OpeningBalance    decimal.Decimal `json:"openingBalance" swaggertype:"number"`
	IncludeInNetworth *bool           `json:"includeInNetworth"`
}

func (r AccountRequest) input() services.AccountInput {
	include := true
	if r.IncludeInNetworth != nil {
		include = *r.IncludeInNetworth
	}
	return services.AccountInput{
		Name:              r.Name,
		AccountTypeID:     r.AccountTypeID,
		CurrencyID:        r.CurrencyID,
		IsSavings:         r.IsSavings,
		OpeningBalance:    r.OpeningBalance,
		IncludeInNetworth: include,
	}
}

// AccountTypeRequest represents the request payload for an account type.
type AccountTypeRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=50"`
	IsCard bool   `json:"isCard"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account type or currency not found"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	account, err := h.accountService.CreateAccount(userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.Name, "openingBalance": account.OpeningBalance.String()})

	c.JSON(http.StatusCreated, account)
}

// GetAccounts lists the user's accounts
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Account "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.accountService.GetUserAccounts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccount returns one account
// @Summary     Get account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
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

	account, err := h.accountService.GetAccountByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAccount replaces an account
// @Summary     Update account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Account ID"
// @Param       request body AccountRequest true "Account details"
// @Success     200 {object} models.Account "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
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

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	account, err := h.accountService.UpdateAccount(userID, id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "account", id, c.ClientIP(),
		map[string]interface{}{"name": account.Name})

	c.JSON(http.StatusOK, account)
}

// DeleteAccount removes an account without transactions
// @Summary     Delete account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     409 {object} ErrorResponse "Account in use"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
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

	if err := h.accountService.DeleteAccount(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "account", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
}

// GetAccountTypes lists account types
// @Summary     List account types
// @Tags        account-types
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.AccountType "Account types"
// @Router      /account-types [get]
func (h *AccountHandler) GetAccountTypes(c *gin.Context) {
	types, err := h.accountTypeService.GetAccountTypes()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// GetAccountType returns one account type
// @Summary     Get account type
// @Tags        account-types
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account type ID"
// @Success     200 {object} models.AccountType "Account type"
// @Failure     404 {object} ErrorResponse "Account type not found"
// @Router      /account-types/{id} [get]
func (h *AccountHandler) GetAccountType(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	at, err := h.accountTypeService.GetAccountTypeByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, at)
}

// CreateAccountType adds an account type
// @Summary     Create account type
// @Tags        account-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AccountTypeRequest true "Account type"
// @Success     201 {object} models.AccountType "Account type created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /account-types [post]
func (h *AccountHandler) CreateAccountType(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AccountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	at, err := h.accountTypeService.CreateAccountType(req.Name, req.IsCard)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "account_type", at.ID, c.ClientIP(),
		map[string]interface{}{"name": at.Name})

	c.JSON(http.StatusCreated, at)
}

// UpdateAccountType renames an account type
// @Summary     Update account type
// @Tags        account-types
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Account type ID"
// @Param       request body AccountTypeRequest true "Account type"
// @Success     200 {object} models.AccountType "Updated account type"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account type not found"
// @Router      /account-types/{id} [put]
func (h *AccountHandler) UpdateAccountType(c *gin.Context) {
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

	var req AccountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	at, err := h.accountTypeService.UpdateAccountType(id, req.Name, req.IsCard)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "account_type", id, c.ClientIP(),
		map[string]interface{}{"name": at.Name})

	c.JSON(http.StatusOK, at)
}

// DeleteAccountType removes an unused account type
// @Summary     Delete account type
// @Tags        account-types
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account type ID"
// @Success     200 {object} MessageResponse "Account type deleted"
// @Failure     404 {object} ErrorResponse "Account type not found"
// @Failure     409 {object} ErrorResponse "Account type in use"
// @Router      /account-types/{id} [delete]
func (h *AccountHandler) DeleteAccountType(c *gin.Context) {
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

	if err := h.accountTypeService.DeleteAccountType(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "account_type", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Account type deleted successfully"})
}
