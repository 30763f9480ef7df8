package repository

import (
	"time"

	"github.com/mirocommunity/localtv/app/models"
)

// SiteRepository defines site-related database operations.
type SiteRepository interface {
	Create(site *models.Site) error
	GetByID(id uint) (*models.Site, error)
	GetByHost(host string) (*models.Site, error)
	Update(site *models.Site) error
	UpdateTierName(siteID uint, tierName string) error
	List() ([]models.Site, error)
}

// TierInfoRepository defines subscription ledger operations. Mutating
// methods that take part in a tier switch run inside the transaction the
// switch engine opens.
type TierInfoRepository interface {
	Create(info *models.TierInfo) error
	GetBySiteID(siteID uint) (*models.TierInfo, error)
	GetBySiteIDForUpdate(siteID uint) (*models.TierInfo, error)
	GetByPaymentSecret(secret string) (*models.TierInfo, error)
	Update(info *models.TierInfo) error
	SetSubscription(siteID uint, paypalProfileID string) error
	ClearSubscription(siteID uint) error
	ListPaidWithoutSubscription(paidTierNames []string) ([]models.TierInfo, error)
}

// VideoRepository defines video-related database operations.
type VideoRepository interface {
	Create(video *models.Video) error
	GetByID(id uint) (*models.Video, error)
	GetByUUID(uuid string) (*models.Video, error)
	GetBySiteAndURL(siteID uint, url string) (*models.Video, error)
	Update(video *models.Video) error
	Delete(id uint) error
	CountActiveBySite(siteID uint) (int64, error)
	ListBySite(siteID uint, q VideoQuery) ([]models.Video, int64, error)
	BulkSetStatus(siteID uint, ids []uint, status string) (int64, error)
	BulkSetCategory(siteID uint, ids []uint, categoryID *uint) (int64, error)
	BulkSetFeatured(siteID uint, ids []uint, featured bool) (int64, error)
	BulkDelete(siteID uint, ids []uint) (int64, error)
	HideActiveAboveLimit(siteID uint, limit int) (int64, error)
}

// VideoQuery narrows and orders a bulk-edit listing.
type VideoQuery struct {
	Status     string
	Filter     string // "", "featured", "rejected", "no-attribution", "no-category"
	CategoryID uint
	Search     string
	Sort       string // "name", "-name", "when_submitted", "-when_submitted", "when_published", "-when_published"
	Offset     int
	Limit      int
}

// UserRepository defines user-related database operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetBySiteAndUsername(siteID uint, username string) (*models.User, error)
	Update(user *models.User) error
	CountAdminsBySite(siteID uint) (int64, error)
	ListAdminsBySite(siteID uint) ([]models.User, error)
	DemoteAdmins(siteID uint, ids []uint) (int64, error)
}

// CategoryRepository defines category lookups for moderation views.
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id uint) (*models.Category, error)
	ListBySite(siteID uint) ([]models.Category, error)
}

// PaymentEventRepository is the processed-event log used to deduplicate
// gateway webhook deliveries.
type PaymentEventRepository interface {
	CreateIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListUnprocessedOlderThan(cutoff time.Time) ([]models.PaymentEvent, error)
}
