package models

import "time"

// Site is one hosted community. Every request is resolved to exactly one
// site by host name; all videos, admins and subscription state hang off it.
type Site struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	Name                    string    `gorm:"type:varchar(100);not null" json:"name"`
	Host                    string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"host"`
	TierName                string    `gorm:"type:varchar(20);not null;default:'basic';index" json:"tier_name"`
	ThemeName               string    `gorm:"type:varchar(100);not null;default:''" json:"theme_name"`
	CustomDomain            string    `gorm:"type:varchar(191);not null;default:''" json:"custom_domain"`
	CustomCSS               string    `gorm:"type:text" json:"custom_css"`
	SubmissionRequiresLogin bool      `gorm:"default:false" json:"submission_requires_login"`
	DisplaySubmitButton     bool      `gorm:"default:true" json:"display_submit_button"`
	CreatedAt               time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
