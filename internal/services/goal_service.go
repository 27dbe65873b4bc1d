package services

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/progress"
)

// goalService handles savings goals and their progress.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

// CreateGoal creates a goal. Status defaults to Active and priority to Medium.
func (s *goalService) CreateGoal(userID string, input GoalInput) (*GoalView, error) {
	s.applyDefaults(&input)
	category, err := validateGoal(s.db, userID, input)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		CategoryID:    input.CategoryID,
		StartDate:     input.StartDate.UTC(),
		EndDate:       utcPtr(input.EndDate),
		Tag:           input.Tag,
		Status:        input.Status,
		Priority:      input.Priority,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if goal.Status == models.GoalStatusActive {
			if err := activeGoalConflict(tx, userID, goal.CategoryID, ""); err != nil {
				return err
			}
		}
		if err := tx.Create(goal).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.ErrActiveGoalExists
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &GoalView{Goal: *goal, Category: category}, nil
}

// UpdateGoal replaces the writable fields of a goal. Start date, status and
// priority left empty keep their stored values. Moving to another category
// or reactivating the goal is rejected while another active goal holds that
// category.
func (s *goalService) UpdateGoal(userID, goalID string, input GoalInput) (*GoalView, error) {
	var view *GoalView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := ownedGoal(forUpdate(tx), userID, goalID)
		if err != nil {
			return err
		}

		keepStored(&input, goal)
		category, err := validateGoal(tx, userID, input)
		if err != nil {
			return err
		}

		categoryChanged := input.CategoryID != goal.CategoryID
		activating := input.Status == models.GoalStatusActive && goal.Status != models.GoalStatusActive
		if input.Status == models.GoalStatusActive && (categoryChanged || activating) {
			if err := activeGoalConflict(tx, userID, input.CategoryID, goal.ID); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"name":           strings.TrimSpace(input.Name),
			"description":    input.Description,
			"target_amount":  input.TargetAmount,
			"current_amount": input.CurrentAmount,
			"category_id":    input.CategoryID,
			"start_date":     input.StartDate.UTC(),
			"end_date":       utcPtr(input.EndDate),
			"tag":            input.Tag,
			"status":         input.Status,
			"priority":       input.Priority,
		}
		if err := tx.Model(goal).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.ErrActiveGoalExists
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		reloaded, err := ownedGoal(tx, userID, goalID)
		if err != nil {
			return err
		}
		view = &GoalView{Goal: *reloaded, Category: category}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteGoal removes a goal owned by the user.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := ownedGoal(s.db, userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetGoalByID returns a goal owned by the user. Goals of other users are
// reported as missing.
func (s *goalService) GetGoalByID(userID, goalID string) (*GoalView, error) {
	var goal models.Goal
	q := s.db.Where("id = ? AND user_id = ?", goalID, userID)
	if err := firstOrErr(q, &goal, apperrors.ErrGoalNotFound); err != nil {
		return nil, err
	}
	views, err := s.views([]models.Goal{goal})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetGoals lists all of the user's goals, newest first.
func (s *goalService) GetGoals(userID string) ([]GoalView, error) {
	return s.list(userID, nil)
}

// GetActiveGoals lists the user's active goals.
func (s *goalService) GetActiveGoals(userID string) ([]GoalView, error) {
	status := models.GoalStatusActive
	return s.list(userID, &status)
}

// GetCompletedGoals lists the user's completed goals.
func (s *goalService) GetCompletedGoals(userID string) ([]GoalView, error) {
	status := models.GoalStatusCompleted
	return s.list(userID, &status)
}

// ComputeGoalProgress derives a goal's progress from its opening amount and
// the contributions recorded in its category since the start date.
func (s *goalService) ComputeGoalProgress(goal *models.Goal) (*GoalProgress, error) {
	cats, err := categoriesByID(s.db, []string{goal.CategoryID})
	if err != nil {
		return nil, err
	}
	return s.progress(goal, cats[goal.CategoryID])
}

// ComputeAllGoalProgress derives progress for every active goal, ordered by
// priority then completion, both descending.
func (s *goalService) ComputeAllGoalProgress(userID string) ([]GoalProgress, error) {
	var goals []models.Goal
	err := s.db.Where("user_id = ? AND status = ?", userID, models.GoalStatusActive).Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ids := make([]string, len(goals))
	for i := range goals {
		ids[i] = goals[i].CategoryID
	}
	cats, err := categoriesByID(s.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]GoalProgress, 0, len(goals))
	for i := range goals {
		p, err := s.progress(&goals[i], cats[goals[i].CategoryID])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].PercentageComplete > out[j].PercentageComplete
	})
	return out, nil
}

// GoalExists reports whether the user owns a goal with the given id.
func (s *goalService) GoalExists(userID, goalID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Goal{}).Where("id = ? AND user_id = ?", goalID, userID).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func (s *goalService) progress(goal *models.Goal, category *models.Category) (*GoalProgress, error) {
	now := s.now()
	contributed, err := sumAmountThrough(s.db, goal.UserID, []string{goal.CategoryID}, goal.StartDate, now)
	if err != nil {
		return nil, err
	}

	res := progress.Goal(goal.TargetAmount, goal.CurrentAmount, contributed, goal.EndDate, now)
	p := &GoalProgress{
		ID:                 goal.ID,
		GoalID:             goal.ID,
		Name:               goal.Name,
		Description:        goal.Description,
		TargetAmount:       goal.TargetAmount,
		CurrentAmount:      res.Current,
		RemainingAmount:    res.Remaining,
		PercentageComplete: res.Percentage,
		CategoryID:         goal.CategoryID,
		StartDate:          goal.StartDate,
		EndDate:            goal.EndDate,
		Tag:                goal.Tag,
		Status:             goal.Status,
		Priority:           goal.Priority,
		StatusColor:        progress.StatusColor(string(goal.Status)),
		PriorityColor:      progress.PriorityColor(string(goal.Priority)),
		DaysRemaining:      res.DaysRemaining,
		IsOverdue:          res.IsOverdue,
		CreatedAt:          goal.CreatedAt,
		UpdatedAt:          goal.UpdatedAt,
	}
	if category != nil {
		p.CategoryName = category.Name
	}
	return p, nil
}

// ownedGoal loads a goal by id, distinguishing missing from foreign.
func ownedGoal(db *gorm.DB, userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := firstOrErr(db.Where("id = ?", goalID), &goal, apperrors.ErrGoalNotFound); err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return &goal, nil
}

func (s *goalService) list(userID string, status *models.GoalStatus) ([]GoalView, error) {
	q := s.db.Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var goals []models.Goal
	if err := q.Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.views(goals)
}

func (s *goalService) views(goals []models.Goal) ([]GoalView, error) {
	ids := make([]string, len(goals))
	for i := range goals {
		ids[i] = goals[i].CategoryID
	}
	cats, err := categoriesByID(s.db, ids)
	if err != nil {
		return nil, err
	}

	items := make([]GoalView, len(goals))
	for i := range goals {
		items[i] = GoalView{Goal: goals[i], Category: cats[goals[i].CategoryID]}
	}
	return items, nil
}

func validateGoal(db *gorm.DB, userID string, input GoalInput) (*models.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !input.TargetAmount.IsPositive() {
		return nil, apperrors.ErrInvalidGoalTarget
	}
	if input.CurrentAmount.IsNegative() {
		return nil, apperrors.ErrNegativeGoalCurrent
	}
	if input.CurrentAmount.GreaterThan(input.TargetAmount) {
		return nil, apperrors.ErrGoalCurrentExceedsTarget
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return nil, apperrors.ErrInvalidGoalDates
	}
	if !validGoalStatus(input.Status) || input.Priority.Rank() == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal status or priority")
	}

	var category models.Category
	q := db.Where("id = ? AND user_id = ?", input.CategoryID, userID)
	if err := firstOrErr(q, &category, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	if category.Type != models.CategoryTypeSavingsGoal {
		return nil, apperrors.ErrGoalCategoryType
	}
	return &category, nil
}

func (s *goalService) applyDefaults(input *GoalInput) {
	if input.Status == "" {
		input.Status = models.GoalStatusActive
	}
	if input.Priority == "" {
		input.Priority = models.GoalPriorityMedium
	}
	if input.StartDate.IsZero() {
		input.StartDate = progress.Day(s.now())
	}
}

// keepStored fills the fields an update left empty from the stored goal.
func keepStored(input *GoalInput, goal *models.Goal) {
	if input.Status == "" {
		input.Status = goal.Status
	}
	if input.Priority == "" {
		input.Priority = goal.Priority
	}
	if input.StartDate.IsZero() {
		input.StartDate = goal.StartDate
	}
}

func validGoalStatus(status models.GoalStatus) bool {
	switch status {
	case models.GoalStatusActive, models.GoalStatusPaused, models.GoalStatusCompleted, models.GoalStatusCancelled:
		return true
	}
	return false
}

func activeGoalConflict(db *gorm.DB, userID, categoryID, excludeID string) error {
	q := db.Model(&models.Goal{}).
		Where("user_id = ? AND category_id = ? AND status = ?", userID, categoryID, models.GoalStatusActive)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrActiveGoalExists
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
