package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensetracker/internal/services"
)

// BudgetHandler handles budget-related requests
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget
type CreateBudgetRequest struct {
	CategoryID string          `json:"categoryId" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number"`
}

// UpdateBudgetRequest represents the request payload for changing a budget amount
type UpdateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

// CreateBudget handles the creation of a new budget
// @Summary     Create a budget
// @Description Create a monthly budget for an expense category, effective from the start of the current month
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} services.BudgetView "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Active budget already exists"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, req.CategoryID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"categoryId": req.CategoryID, "amount": req.Amount.String()})

	c.JSON(http.StatusCreated, budget)
}

// UpdateBudget changes a budget amount
// @Summary     Update budget
// @Description Edits in place within the budget's first month. Later changes close the record and start a new one this month.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "New amount"
// @Success     200 {object} services.BudgetView "Current budget"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive budget"
// @Failure     403 {object} ErrorResponse "Not your budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
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

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"previousId": id, "amount": req.Amount.String()})

	c.JSON(http.StatusOK, budget)
}

// GetActiveBudgets lists active budgets
// @Summary     List active budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.BudgetView "Active budgets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/active [get]
func (h *BudgetHandler) GetActiveBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetActiveBudgets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// GetBudgetHistory lists every budget record
// @Summary     Budget history
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.BudgetView "All budgets, newest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/history [get]
func (h *BudgetHandler) GetBudgetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetBudgetHistory(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// GetBudgetStatuses returns month-to-date status for all active budgets
// @Summary     Budget statuses
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.BudgetStatus "Statuses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetBudgetStatuses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.budgetService.ComputeAllBudgetStatuses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// GetBudgetStatusByCategory returns the status of the active budget for a category
// @Summary     Budget status for a category
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       categoryId path string true "Category ID"
// @Success     200 {object} services.BudgetStatus "Status"
// @Failure     404 {object} ErrorResponse "No active budget for this category"
// @Router      /budgets/status/{categoryId} [get]
func (h *BudgetHandler) GetBudgetStatusByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "categoryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.budgetService.GetBudgetStatusByCategory(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// DeleteBudget removes a budget record
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     403 {object} ErrorResponse "Not your budget"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
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

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "budget", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}
