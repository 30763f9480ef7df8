package models

import "time"

// User is a member of one site. Admins moderate videos and manage the
// site's subscription; the admin flag is what tier limits count.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SiteID       uint       `gorm:"not null;index:idx_users_site_admin,priority:1;index:ux_users_site_username,unique,priority:1" json:"site_id"`
	Username     string     `gorm:"type:varchar(150);not null;index:ux_users_site_username,unique,priority:2" json:"username"`
	Email        string     `gorm:"type:varchar(191);not null;default:''" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null;default:''" json:"-"`
	IsAdmin      bool       `gorm:"default:false;index:idx_users_site_admin,priority:2" json:"is_admin"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
