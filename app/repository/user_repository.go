package repository

import (
	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository backed by GORM.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetBySiteAndUsername(siteID uint, username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("site_id = ? AND username = ?", siteID, username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) CountAdminsBySite(siteID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("site_id = ? AND is_admin = ? AND is_active = ?", siteID, true, true).
		Count(&count).Error
	return count, err
}

// ListAdminsBySite returns active admins oldest-first; downgrades keep the
// head of this list within the new limit.
func (r *userRepository) ListAdminsBySite(siteID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("site_id = ? AND is_admin = ? AND is_active = ?", siteID, true, true).
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) DemoteAdmins(siteID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.Model(&models.User{}).
		Where("site_id = ? AND id IN ?", siteID, ids).
		Update("is_admin", false)
	return tx.RowsAffected, tx.Error
}
