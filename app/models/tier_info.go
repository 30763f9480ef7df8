package models

import "time"

// TierInfo is the per-site subscription ledger. It carries the PayPal
// subscription linkage, free trial state and the payment secret that
// authenticates inbound webhook and trial URLs.
//
// Invariant: PayPalProfileID is non-empty only while the site sits on a
// paid tier or runs a free trial.
type TierInfo struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	SiteID             uint       `gorm:"not null;uniqueIndex" json:"site_id"`
	PaymentSecret      string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	PayPalProfileID    string     `gorm:"column:paypal_profile_id;type:varchar(64);not null;default:'';index" json:"paypal_profile_id"`
	FreeTrialAvailable bool       `gorm:"default:true" json:"free_trial_available"`
	FreeTrialStartedAt *time.Time `gorm:"type:timestamp;default:null" json:"free_trial_started_at,omitempty"`
	PaymentDueDate     *time.Time `gorm:"type:timestamp;default:null" json:"payment_due_date,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TierInfo) TableName() string {
	return "tier_infos"
}

// InFreeTrial reports whether the site started a trial that is still the
// only thing backing its paid tier (no confirmed PayPal subscription yet).
func (t *TierInfo) InFreeTrial() bool {
	return t.FreeTrialStartedAt != nil && t.PayPalProfileID == ""
}
