package models

import "time"

const (
	VideoStatusUnapproved = "unapproved"
	VideoStatusActive     = "active"
	VideoStatusRejected   = "rejected"
)

// Video is a hosted or referenced video on a site. Videos are never stored
// as files here; they are URLs, direct file links or embed codes.
type Video struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"uuid"`
	SiteID        uint       `gorm:"not null;index:idx_videos_site_status,priority:1" json:"site_id"`
	Name          string     `gorm:"type:varchar(250);not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description"`
	WebsiteURL    string     `gorm:"type:varchar(2048);not null;default:''" json:"website_url"`
	FileURL       string     `gorm:"type:varchar(2048);not null;default:''" json:"file_url"`
	EmbedCode     string     `gorm:"type:text" json:"embed_code"`
	ThumbnailURL  string     `gorm:"type:varchar(2048);not null;default:''" json:"thumbnail_url"`
	Status        string     `gorm:"type:varchar(16);not null;default:'unapproved';index:idx_videos_site_status,priority:2" json:"status"`
	SubmitterID   *uint      `gorm:"index" json:"submitter_id,omitempty"`
	ContactEmail  string     `gorm:"type:varchar(191);not null;default:''" json:"contact_email"`
	CategoryID    *uint      `gorm:"index" json:"category_id,omitempty"`
	LastFeatured  *time.Time `gorm:"type:timestamp;default:null;index" json:"last_featured,omitempty"`
	WhenSubmitted time.Time  `gorm:"autoCreateTime;index" json:"when_submitted"`
	WhenApproved  *time.Time `gorm:"type:timestamp;default:null;index" json:"when_approved,omitempty"`
	WhenPublished *time.Time `gorm:"type:timestamp;default:null" json:"when_published,omitempty"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPlayable reports whether the submitted data is enough to show the
// video without a further embed request from the author.
func (v *Video) IsPlayable() bool {
	return v.EmbedCode != "" || v.FileURL != ""
}
