package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensetracker/internal/services"
)

// DashboardHandler serves dashboard aggregates.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// AmountResponse wraps a single monetary figure.
type AmountResponse struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

// GetTodaySpending returns today's expense total
// @Summary     Today's spending
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AmountResponse "Spent today"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/today-spending [get]
func (h *DashboardHandler) GetTodaySpending(c *gin.Context) {
	h.amount(c, h.dashboardService.GetTodaySpending)
}

// GetMonthlyBudgetRemaining returns what is left across active budgets this month
// @Summary     Monthly budget remaining
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AmountResponse "Remaining, floored at zero"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/monthly-budget-remaining [get]
func (h *DashboardHandler) GetMonthlyBudgetRemaining(c *gin.Context) {
	h.amount(c, h.dashboardService.GetMonthlyBudgetRemaining)
}

func (h *DashboardHandler) amount(c *gin.Context, fetch func(ctx context.Context, userID string) (decimal.Decimal, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	amount, err := fetch(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AmountResponse{Amount: amount})
}

// GetGoalsProgress returns aggregate progress across active goals
// @Summary     Goals progress
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GoalsProgressSummary "Progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/goals-progress [get]
func (h *DashboardHandler) GetGoalsProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.dashboardService.GetGoalsProgress(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetStats returns all headline figures
// @Summary     Dashboard stats
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardStats "Stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetSummary returns net worth and month-to-date cash flow
// @Summary     Dashboard summary
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
