package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

// GoalHandler handles savings goal requests
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// GoalRequest represents the request payload for creating or updating a goal
type GoalRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   *string         `json:"description" binding:"omitempty,max=1000"`
	TargetAmount  decimal.Decimal `json:"targetAmount" swaggertype:"number"`
	CurrentAmount decimal.Decimal `json:"currentAmount" swaggertype:"number"`
	CategoryID    string          `json:"categoryId" binding:"required,uuid"`
	StartDate     *string         `json:"startDate"`
	EndDate       *string         `json:"endDate"`
	Tag           *string         `json:"tag" binding:"omitempty,max=50"`
	Status        string          `json:"status" binding:"omitempty,goal_status"`
	Priority      string          `json:"priority" binding:"omitempty,goal_priority"`
}

// GoalExistsResponse reports whether a goal exists for the user.
type GoalExistsResponse struct {
	Exists bool `json:"exists"`
}

func (r GoalRequest) input() (services.GoalInput, error) {
	start, err := optionalDate(r.StartDate)
	if err != nil {
		return services.GoalInput{}, err
	}
	end, err := optionalDate(r.EndDate)
	if err != nil {
		return services.GoalInput{}, err
	}

	input := services.GoalInput{
		Name:          r.Name,
		Description:   r.Description,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		CategoryID:    r.CategoryID,
		EndDate:       end,
		Tag:           r.Tag,
		Status:        models.GoalStatus(r.Status),
		Priority:      models.GoalPriority(r.Priority),
	}
	if start != nil {
		input.StartDate = *start
	}
	return input, nil
}

// CreateGoal handles the creation of a new savings goal
// @Summary     Create a goal
// @Description Status defaults to Active and priority to Medium. Only one active goal per category is allowed.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GoalRequest true "Goal details"
// @Success     201 {object} services.GoalView "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Active goal already exists"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": goal.Name, "targetAmount": goal.TargetAmount.String()})

	c.JSON(http.StatusCreated, goal)
}

// UpdateGoal replaces a goal
// @Summary     Update goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Goal ID"
// @Param       request body GoalRequest true "Goal details"
// @Success     200 {object} services.GoalView "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not your goal"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     409 {object} ErrorResponse "Active goal already exists"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
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

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	input, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, id, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "goal", id, c.ClientIP(),
		map[string]interface{}{"status": string(goal.Status), "currentAmount": goal.CurrentAmount.String()})

	c.JSON(http.StatusOK, goal)
}

// DeleteGoal removes a goal
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     403 {object} ErrorResponse "Not your goal"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
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

	if err := h.goalService.DeleteGoal(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "goal", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Goal deleted successfully"})
}

// GetGoal returns one goal
// @Summary     Get goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.GoalView "Goal"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
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

	goal, err := h.goalService.GetGoalByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// GetGoals lists every goal
// @Summary     List goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.GoalView "Goals"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	h.list(c, h.goalService.GetGoals)
}

// GetActiveGoals lists active goals
// @Summary     List active goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.GoalView "Active goals"
// @Router      /goals/active [get]
func (h *GoalHandler) GetActiveGoals(c *gin.Context) {
	h.list(c, h.goalService.GetActiveGoals)
}

// GetCompletedGoals lists completed goals
// @Summary     List completed goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.GoalView "Completed goals"
// @Router      /goals/completed [get]
func (h *GoalHandler) GetCompletedGoals(c *gin.Context) {
	h.list(c, h.goalService.GetCompletedGoals)
}

func (h *GoalHandler) list(c *gin.Context, fetch func(userID string) ([]services.GoalView, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := fetch(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

// GetGoalProgress returns progress for all active goals
// @Summary     Goal progress
// @Description Active goals ordered by priority, then percentage complete
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.GoalProgress "Progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals/progress [get]
func (h *GoalHandler) GetGoalProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.goalService.ComputeAllGoalProgress(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GoalExists reports whether a goal exists
// @Summary     Goal exists
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} GoalExistsResponse "Existence"
// @Router      /goals/{id}/exists [get]
func (h *GoalHandler) GoalExists(c *gin.Context) {
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

	exists, err := h.goalService.GoalExists(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, GoalExistsResponse{Exists: exists})
}
