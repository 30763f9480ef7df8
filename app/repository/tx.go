package repository

import (
	"github.com/mirocommunity/localtv/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TxRunner runs a function against repositories bound to one database
// transaction. Tier switches use it so a switch and a concurrent webhook
// cannot interleave on the same ledger row.
type TxRunner interface {
	InTx(fn func(*Repositories) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner creates a transaction runner on a GORM handle.
func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(fn func(*Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// GetBySiteIDForUpdate locks the ledger row for the duration of the
// surrounding transaction.
func (r *tierInfoRepository) GetBySiteIDForUpdate(siteID uint) (*models.TierInfo, error) {
	var info models.TierInfo
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("site_id = ?", siteID).First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}
