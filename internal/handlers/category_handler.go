package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

// CategoryHandler handles category and subcategory requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CategoryRequest represents the request payload for creating or updating a category
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"max=500"`
	ParentID    *string `json:"parentId" binding:"omitempty,uuid"`
	Type        string  `json:"type" binding:"required,category_type"`
}

// SubCategoryRequest represents the request payload for a subcategory
type SubCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func (r CategoryRequest) input() services.CategoryInput {
	return services.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
		Type:        models.CategoryType(r.Type),
	}
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name, "type": string(category.Type)})

	c.JSON(http.StatusCreated, category)
}

// GetCategories lists the user's categories
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       categoryType query string false "Filter by type (Income, Expense, TargetedSavingsGoal)"
// @Success     200 {array}  models.Category "Categories"
// @Failure     400 {object} ErrorResponse "Invalid category type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var categoryType *models.CategoryType
	if raw := c.Query("categoryType"); raw != "" {
		t := models.CategoryType(raw)
		if !t.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category type"))
			return
		}
		categoryType = &t
	}

	categories, err := h.categoryService.GetUserCategories(userID, categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
// @Summary     Get category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id          path  string true  "Category ID"
// @Param       includeSubs query bool   false "Attach subcategories"
// @Success     200 {object} services.CategoryDetail "Category"
// @Failure     400 {object} ErrorResponse "Invalid category ID"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
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

	includeSubs, _ := strconv.ParseBool(c.Query("includeSubs"))

	category, err := h.categoryService.GetCategoryByID(userID, id, includeSubs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// UpdateCategory replaces a category
// @Summary     Update category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Category ID"
// @Param       request body CategoryRequest true "Category details"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
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

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "category", id, c.ClientIP(),
		map[string]interface{}{"name": category.Name})

	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category and its subcategories
// @Summary     Delete category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use or has children"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
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

	if err := h.categoryService.DeleteCategory(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "category", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}

// CreateSubCategory adds a subcategory under a category
// @Summary     Create subcategory
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Category ID"
// @Param       request body SubCategoryRequest true "Subcategory"
// @Success     201 {object} models.SubCategory "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/subcategories [post]
func (h *CategoryHandler) CreateSubCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	sub, err := h.categoryService.CreateSubCategory(userID, categoryID, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, "subcategory", sub.ID, c.ClientIP(),
		map[string]interface{}{"name": sub.Name, "categoryId": categoryID})

	c.JSON(http.StatusCreated, sub)
}

// GetSubCategories lists a category's subcategories
// @Summary     List subcategories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {array}  models.SubCategory "Subcategories"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/subcategories [get]
func (h *CategoryHandler) GetSubCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	subs, err := h.categoryService.GetSubCategories(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// UpdateSubCategory renames a subcategory
// @Summary     Update subcategory
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Subcategory ID"
// @Param       request body SubCategoryRequest true "Subcategory"
// @Success     200 {object} models.SubCategory "Updated subcategory"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Router      /categories/subcategories/{id} [put]
func (h *CategoryHandler) UpdateSubCategory(c *gin.Context) {
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

	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	sub, err := h.categoryService.UpdateSubCategory(userID, id, req.Name, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdate, "subcategory", id, c.ClientIP(),
		map[string]interface{}{"name": sub.Name})

	c.JSON(http.StatusOK, sub)
}

// DeleteSubCategory removes a subcategory and detaches its transactions
// @Summary     Delete subcategory
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subcategory ID"
// @Success     200 {object} MessageResponse "Subcategory deleted"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Router      /categories/subcategories/{id} [delete]
func (h *CategoryHandler) DeleteSubCategory(c *gin.Context) {
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

	if err := h.categoryService.DeleteSubCategory(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, "subcategory", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Subcategory deleted successfully"})
}
