package repository

import (
	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
)

type tierInfoRepository struct {
	db *gorm.DB
}

// NewTierInfoRepository creates a subscription ledger repository backed by GORM.
func NewTierInfoRepository(db *gorm.DB) TierInfoRepository {
	return &tierInfoRepository{db: db}
}

func (r *tierInfoRepository) Create(info *models.TierInfo) error {
	return r.db.Create(info).Error
}

func (r *tierInfoRepository) GetBySiteID(siteID uint) (*models.TierInfo, error) {
	var info models.TierInfo
	if err := r.db.Where("site_id = ?", siteID).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *tierInfoRepository) GetByPaymentSecret(secret string) (*models.TierInfo, error) {
	var info models.TierInfo
	if err := r.db.Where("payment_secret = ?", secret).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *tierInfoRepository) Update(info *models.TierInfo) error {
	return r.db.Save(info).Error
}

func (r *tierInfoRepository) SetSubscription(siteID uint, paypalProfileID string) error {
	return r.db.Model(&models.TierInfo{}).Where("site_id = ?", siteID).
		Update("paypal_profile_id", paypalProfileID).Error
}

func (r *tierInfoRepository) ClearSubscription(siteID uint) error {
	return r.db.Model(&models.TierInfo{}).Where("site_id = ?", siteID).
		Updates(map[string]interface{}{
			"paypal_profile_id": "",
			"payment_due_date":  nil,
		}).Error
}

func (r *tierInfoRepository) ListPaidWithoutSubscription(paidTierNames []string) ([]models.TierInfo, error) {
	var infos []models.TierInfo
	err := r.db.
		Joins("JOIN sites ON sites.id = tier_infos.site_id").
		Where("sites.tier_name IN ?", paidTierNames).
		Where("tier_infos.paypal_profile_id = ''").
		Find(&infos).Error
	return infos, err
}
