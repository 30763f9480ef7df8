package repository

import (
	"strings"
	"time"

	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
)

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a video repository backed by GORM.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(video *models.Video) error {
	return r.db.Create(video).Error
}

func (r *videoRepository) GetByID(id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) GetByUUID(uuid string) (*models.Video, error) {
	var video models.Video
	if err := r.db.Where("uuid = ?", uuid).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) GetBySiteAndURL(siteID uint, url string) (*models.Video, error) {
	var video models.Video
	err := r.db.Where("site_id = ? AND (website_url = ? OR file_url = ?)", siteID, url, url).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) Update(video *models.Video) error {
	return r.db.Save(video).Error
}

func (r *videoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Video{}, id).Error
}

func (r *videoRepository) CountActiveBySite(siteID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Video{}).
		Where("site_id = ? AND status = ?", siteID, models.VideoStatusActive).
		Count(&count).Error
	return count, err
}

func (r *videoRepository) ListBySite(siteID uint, q VideoQuery) ([]models.Video, int64, error) {
	tx := r.db.Model(&models.Video{}).Where("site_id = ?", siteID)

	status := q.Status
	switch q.Filter {
	case "featured":
		tx = tx.Where("last_featured IS NOT NULL")
	case "rejected":
		status = models.VideoStatusRejected
	case "no-attribution":
		tx = tx.Where("submitter_id IS NULL")
	case "no-category":
		tx = tx.Where("category_id IS NULL")
	}
	if status == "" {
		status = models.VideoStatusActive
	}
	tx = tx.Where("status = ?", status)

	if q.CategoryID != 0 {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx = tx.Order(orderClause(q.Sort))
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}

	var videos []models.Video
	if err := tx.Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func orderClause(sort string) string {
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	switch col {
	case "name":
		col = "LOWER(name)"
	case "when_published":
		col = "when_published"
	case "when_submitted":
		col = "when_submitted"
	default:
		return "when_submitted DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col
}

func (r *videoRepository) BulkSetStatus(siteID uint, ids []uint, status string) (int64, error) {
	updates := map[string]interface{}{"status": status}
	if status == models.VideoStatusActive {
		now := time.Now()
		updates["when_approved"] = &now
	}
	tx := r.db.Model(&models.Video{}).
		Where("site_id = ? AND id IN ?", siteID, ids).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

func (r *videoRepository) BulkSetCategory(siteID uint, ids []uint, categoryID *uint) (int64, error) {
	tx := r.db.Model(&models.Video{}).
		Where("site_id = ? AND id IN ?", siteID, ids).
		Update("category_id", categoryID)
	return tx.RowsAffected, tx.Error
}

func (r *videoRepository) BulkSetFeatured(siteID uint, ids []uint, featured bool) (int64, error) {
	var value interface{}
	if featured {
		now := time.Now()
		value = &now
	}
	tx := r.db.Model(&models.Video{}).
		Where("site_id = ? AND id IN ?", siteID, ids).
		Update("last_featured", value)
	return tx.RowsAffected, tx.Error
}

func (r *videoRepository) BulkDelete(siteID uint, ids []uint) (int64, error) {
	tx := r.db.Where("site_id = ? AND id IN ?", siteID, ids).Delete(&models.Video{})
	return tx.RowsAffected, tx.Error
}

// HideActiveAboveLimit flips the newest active videos beyond the limit back
// to unapproved. The oldest approved videos stay visible, matching how the
// original downgrade path trimmed libraries.
func (r *videoRepository) HideActiveAboveLimit(siteID uint, limit int) (int64, error) {
	if limit < 0 {
		return 0, nil
	}
	var keep []uint
	err := r.db.Model(&models.Video{}).
		Where("site_id = ? AND status = ?", siteID, models.VideoStatusActive).
		Order("when_approved ASC, id ASC").
		Limit(limit).
		Pluck("id", &keep).Error
	if err != nil {
		return 0, err
	}

	tx := r.db.Model(&models.Video{}).
		Where("site_id = ? AND status = ?", siteID, models.VideoStatusActive)
	if len(keep) > 0 {
		tx = tx.Where("id NOT IN ?", keep)
	}
	tx = tx.Update("status", models.VideoStatusUnapproved)
	return tx.RowsAffected, tx.Error
}
