package models

import "time"

// Category groups videos within one site.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SiteID    uint      `gorm:"not null;index:ux_categories_site_slug,unique,priority:1" json:"site_id"`
	Name      string    `gorm:"type:varchar(80);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(80);not null;index:ux_categories_site_slug,unique,priority:2" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
