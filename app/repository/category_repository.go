package repository

import (
	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository backed by GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListBySite(siteID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("site_id = ?", siteID).Order("name").Find(&categories).Error
	return categories, err
}
