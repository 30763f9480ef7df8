package repository

import (
	"strings"

	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
)

type siteRepository struct {
	db *gorm.DB
}

// NewSiteRepository creates a site repository backed by GORM.
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(site *models.Site) error {
	return r.db.Create(site).Error
}

func (r *siteRepository) GetByID(id uint) (*models.Site, error) {
	var site models.Site
	if err := r.db.First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) GetByHost(host string) (*models.Site, error) {
	h := strings.ToLower(strings.TrimSpace(host))
	var site models.Site
	err := r.db.Where("host = ? OR custom_domain = ?", h, h).First(&site).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) Update(site *models.Site) error {
	return r.db.Save(site).Error
}

func (r *siteRepository) UpdateTierName(siteID uint, tierName string) error {
	return r.db.Model(&models.Site{}).Where("id = ?", siteID).
		Update("tier_name", tierName).Error
}

func (r *siteRepository) List() ([]models.Site, error) {
	var sites []models.Site
	err := r.db.Order("id").Find(&sites).Error
	return sites, err
}
