package models

import "time"

// PaymentEvent stores processed gateway notifications with deduplication
// metadata so retried or replayed IPN deliveries are applied once.
type PaymentEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SiteID          uint       `gorm:"not null;index" json:"site_id"`
	Kind            string     `gorm:"type:varchar(32);not null;index" json:"kind"`
	SubscriptionID  string     `gorm:"type:varchar(64);not null;index" json:"subscription_id"`
	AmountCents     int64      `gorm:"not null;default:0" json:"amount_cents"`
	TxnID           string     `gorm:"type:varchar(64);not null;default:''" json:"txn_id"`
	EventKey        string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"event_key"`
	Flagged         bool       `gorm:"default:false" json:"flagged"`
	PayloadRaw      string     `gorm:"type:longtext" json:"payload_raw"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
