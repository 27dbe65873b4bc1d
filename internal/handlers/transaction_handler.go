package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/pagination"
	"expensetracker/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest represents the request payload for creating or updating a transaction
type TransactionRequest struct {
	AccountID       string          `json:"accountId" binding:"required,uuid"`
	CategoryID      string          `json:"categoryId" binding:"required,uuid"`
	SubCategoryID   *string         `json:"subCategoryId" binding:"omitempty,uuid"`
	Description     string          `json:"description" binding:"max=500"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"number"`
	TransactionDate *string         `json:"transactionDate"`
}

func (r TransactionRequest) input() (services.TransactionInput, error) {
	date, err := optionalDate(r.TransactionDate)
	if err != nil {
		return services.TransactionInput{}, err
	}
	input := services.TransactionInput{
		AccountID:     r.AccountID,
		CategoryID:    r.CategoryID,
		SubCategoryID: r.SubCategoryID,
		Description:   r.Description,
		Amount:        r.Amount,
	}
	if date != nil {
		input.TransactionDate = *date
	}
	return input, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a positive amount against an account and category. The category type decides its direction.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account, category or subcategory not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount.String(), "accountId": transaction.AccountID})

	c.JSON(http.StatusCreated, transaction)
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Paginated, newest first. startDate is inclusive and endDate exclusive.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       accountId  query string false "Filter by account"
// @Param       categoryId query string false "Filter by category"
// @Param       startDate  query string false "RFC3339 or YYYY-MM-DD"
// @Param       endDate    query string false "RFC3339 or YYYY-MM-DD"
// @Param       page       query int    false "Page number"
// @Param       pageSize   query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	for param, dest := range map[string]**string{
		"accountId":  &filter.AccountID,
		"categoryId": &filter.CategoryID,
	} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param)
		}
		*dest = &v
	}

	for param, dest := range map[string]**time.Time{
		"startDate": &filter.StartDate,
		"endDate":   &filter.EndDate,
	} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param+" format, use RFC3339 or YYYY-MM-DD")
		}
		*dest = &t
	}

	return filter, nil
}

// GetTransaction returns one transaction
// @Summary     Get transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
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

	transaction, err := h.transactionService.GetTransactionByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// UpdateTransaction replaces a transaction
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
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

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "transaction", id, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount.String()})

	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction removes a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}
