package repository

import (
	"time"

	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates a processed-event log backed by GORM.
func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless its event key was seen before.
// Returns whether this call created the row, plus the stored row either way.
func (r *paymentEventRepository) CreateIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_key"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentEvent
	if err := r.db.Where("event_key = ?", event.EventKey).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *paymentEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *paymentEventRepository) ListUnprocessedOlderThan(cutoff time.Time) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.
		Where("processed_at IS NULL AND created_at < ?", cutoff).
		Order("created_at").
		Find(&events).Error
	return events, err
}
