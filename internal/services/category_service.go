package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

// categoryService handles categories and their subcategories.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category. Names are unique per user.
func (s *categoryService) CreateCategory(userID string, input CategoryInput) (*models.Category, error) {
	if err := s.validate(userID, "", input); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ParentID:    input.ParentID,
		Type:        input.Type,
	}
	if err := s.db.Create(category).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories lists the user's categories, optionally of one type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("user_id = ?", userID)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	categories := []models.Category{}
	if err := q.Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID returns a category owned by the user, with its
// subcategories when includeSubs is set.
func (s *categoryService) GetCategoryByID(userID, categoryID string, includeSubs bool) (*CategoryDetail, error) {
	category, err := s.owned(userID, categoryID)
	if err != nil {
		return nil, err
	}

	detail := &CategoryDetail{Category: *category}
	if includeSubs {
		subs := []models.SubCategory{}
		if err := s.db.Where("category_id = ?", category.ID).Order("name").Find(&subs).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		detail.SubCategories = subs
	}
	return detail, nil
}

// UpdateCategory replaces the writable fields of a category.
func (s *categoryService) UpdateCategory(userID, categoryID string, input CategoryInput) (*models.Category, error) {
	category, err := s.owned(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, category.ID, input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(input.Name),
		"description": input.Description,
		"parent_id":   input.ParentID,
		"type":        input.Type,
	}
	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.owned(userID, categoryID)
}

// DeleteCategory removes a category and its subcategories. Categories with
// children or referenced by transactions, budgets or goals are kept.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.owned(userID, categoryID)
	if err != nil {
		return err
	}

	children, err := s.count(&models.Category{}, "parent_id = ?", category.ID)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	for _, model := range []interface{}{&models.Transaction{}, &models.Budget{}, &models.Goal{}} {
		refs, err := s.count(model, "category_id = ?", category.ID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.ErrCategoryInUse
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.SubCategory{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateSubCategory adds a subcategory under a category the user owns.
func (s *categoryService) CreateSubCategory(userID, categoryID, name, description string) (*models.SubCategory, error) {
	category, err := s.owned(userID, categoryID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	sub := &models.SubCategory{CategoryID: category.ID, Name: name, Description: description}
	if err := s.db.Create(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sub, nil
}

// GetSubCategories lists the subcategories of a category the user owns.
func (s *categoryService) GetSubCategories(userID, categoryID string) ([]models.SubCategory, error) {
	detail, err := s.GetCategoryByID(userID, categoryID, true)
	if err != nil {
		return nil, err
	}
	return detail.SubCategories, nil
}

// UpdateSubCategory renames a subcategory.
func (s *categoryService) UpdateSubCategory(userID, subCategoryID, name, description string) (*models.SubCategory, error) {
	sub, err := s.ownedSub(userID, subCategoryID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	if err := s.db.Model(sub).Updates(map[string]interface{}{"name": name, "description": description}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sub, nil
}

// DeleteSubCategory removes a subcategory and clears it from transactions.
func (s *categoryService) DeleteSubCategory(userID, subCategoryID string) error {
	sub, err := s.ownedSub(userID, subCategoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Transaction{}).
			Where("sub_category_id = ?", sub.ID).
			Update("sub_category_id", nil).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(sub).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *categoryService) owned(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	q := s.db.Where("id = ? AND user_id = ?", categoryID, userID)
	if err := firstOrErr(q, &category, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *categoryService) ownedSub(userID, subCategoryID string) (*models.SubCategory, error) {
	var sub models.SubCategory
	q := s.db.Where("id = ?", subCategoryID)
	if err := firstOrErr(q, &sub, apperrors.ErrSubCategoryNotFound); err != nil {
		return nil, err
	}
	if _, err := s.owned(userID, sub.CategoryID); err != nil {
		return nil, apperrors.ErrSubCategoryNotFound
	}
	return &sub, nil
}

func (s *categoryService) count(model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := s.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}

func (s *categoryService) validate(userID, selfID string, input CategoryInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !input.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
	}

	if input.ParentID != nil {
		if selfID != "" && *input.ParentID == selfID {
			return apperrors.ErrSelfParentCategory
		}
		if _, err := s.owned(userID, *input.ParentID); err != nil {
			return apperrors.WithMessage(apperrors.ErrCategoryNotFound, "Parent category not found")
		}
	}

	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if selfID != "" {
		q = q.Where("id <> ?", selfID)
	}
	var dup int64
	if err := q.Count(&dup).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if dup > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}
