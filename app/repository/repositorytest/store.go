// Package repositorytest provides an in-memory repository set for testing
// services against the repository layer without a database.
package repositorytest

import (
	"time"

	"gorm.io/gorm"

	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
)

// Store is the backing state behind the fakes. Sites and ledger rows are
// keyed by site id. The Err fields inject a single failure into the next
// matching repository call.
type Store struct {
	Sites        map[uint]*models.Site
	Infos        map[uint]*models.TierInfo
	Users        []models.User
	ActiveVideos map[uint]int64
	Events       []models.PaymentEvent

	ClearSubscriptionErr error
	UpdateTierNameErr    error
}

func NewStore() *Store {
	return &Store{
		Sites:        map[uint]*models.Site{},
		Infos:        map[uint]*models.TierInfo{},
		ActiveVideos: map[uint]int64{},
	}
}

// NewSingleSite builds a store with one site (id 1) on the given tier. Its
// ledger row carries payment secret "s3cret" and an unused free trial.
func NewSingleSite(tierName string) *Store {
	s := NewStore()
	s.AddSite(1, "test.example.org", tierName)
	s.Sites[1].Name = "Test Community"
	return s
}

func (s *Store) AddSite(id uint, host, tierName string) {
	s.Sites[id] = &models.Site{ID: id, Host: host, TierName: tierName}
	s.Infos[id] = &models.TierInfo{ID: id, SiteID: id, PaymentSecret: "s3cret", FreeTrialAvailable: true}
}

// Site returns site 1, the one NewSingleSite creates.
func (s *Store) Site() *models.Site { return s.Sites[1] }

// Info returns site 1's ledger row.
func (s *Store) Info() *models.TierInfo { return s.Infos[1] }

func (s *Store) AddAdmins(siteID uint, usernames ...string) {
	for _, name := range usernames {
		s.Users = append(s.Users, models.User{
			ID:        uint(len(s.Users) + 1),
			SiteID:    siteID,
			Username:  name,
			IsAdmin:   true,
			IsActive:  true,
			CreatedAt: time.Now().Add(time.Duration(len(s.Users)) * time.Minute),
		})
	}
}

func (s *Store) LastEvent() *models.PaymentEvent {
	if len(s.Events) == 0 {
		return nil
	}
	return &s.Events[len(s.Events)-1]
}

// Repositories returns fakes bound to this store.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Site:         &siteRepo{s: s},
		TierInfo:     &tierInfoRepo{s: s},
		Video:        &videoRepo{s: s},
		User:         &userRepo{s: s},
		PaymentEvent: &paymentEventRepo{s: s},
	}
}

// Runner returns a TxRunner over this store. Site and ledger mutations made
// inside a failing callback are rolled back, matching what a real
// transaction guarantees.
func (s *Store) Runner() repository.TxRunner { return &runner{s: s} }

type runner struct{ s *Store }

func (r *runner) InTx(fn func(*repository.Repositories) error) error {
	sites := map[uint]*models.Site{}
	for id, site := range r.s.Sites {
		cp := *site
		sites[id] = &cp
	}
	infos := map[uint]*models.TierInfo{}
	for id, info := range r.s.Infos {
		cp := *info
		infos[id] = &cp
	}
	if err := fn(r.s.Repositories()); err != nil {
		r.s.Sites = sites
		r.s.Infos = infos
		return err
	}
	return nil
}

type siteRepo struct{ s *Store }

func (f *siteRepo) Create(site *models.Site) error {
	cp := *site
	f.s.Sites[cp.ID] = &cp
	return nil
}

func (f *siteRepo) GetByID(id uint) (*models.Site, error) {
	site, ok := f.s.Sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *site
	return &cp, nil
}

func (f *siteRepo) GetByHost(host string) (*models.Site, error) {
	for _, site := range f.s.Sites {
		if site.Host == host || site.CustomDomain == host {
			cp := *site
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *siteRepo) Update(site *models.Site) error {
	cp := *site
	f.s.Sites[cp.ID] = &cp
	return nil
}

func (f *siteRepo) UpdateTierName(siteID uint, tierName string) error {
	if err := f.s.UpdateTierNameErr; err != nil {
		f.s.UpdateTierNameErr = nil
		return err
	}
	site, ok := f.s.Sites[siteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	site.TierName = tierName
	return nil
}

func (f *siteRepo) List() ([]models.Site, error) {
	var out []models.Site
	for _, site := range f.s.Sites {
		out = append(out, *site)
	}
	return out, nil
}

type tierInfoRepo struct{ s *Store }

func (f *tierInfoRepo) Create(info *models.TierInfo) error {
	cp := *info
	f.s.Infos[cp.SiteID] = &cp
	return nil
}

func (f *tierInfoRepo) GetBySiteID(siteID uint) (*models.TierInfo, error) {
	info, ok := f.s.Infos[siteID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *info
	return &cp, nil
}

func (f *tierInfoRepo) GetBySiteIDForUpdate(siteID uint) (*models.TierInfo, error) {
	return f.GetBySiteID(siteID)
}

func (f *tierInfoRepo) GetByPaymentSecret(secret string) (*models.TierInfo, error) {
	for _, info := range f.s.Infos {
		if info.PaymentSecret == secret {
			cp := *info
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *tierInfoRepo) Update(info *models.TierInfo) error {
	cp := *info
	f.s.Infos[cp.SiteID] = &cp
	return nil
}

func (f *tierInfoRepo) SetSubscription(siteID uint, paypalProfileID string) error {
	info, ok := f.s.Infos[siteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	info.PayPalProfileID = paypalProfileID
	return nil
}

func (f *tierInfoRepo) ClearSubscription(siteID uint) error {
	if err := f.s.ClearSubscriptionErr; err != nil {
		f.s.ClearSubscriptionErr = nil
		return err
	}
	info, ok := f.s.Infos[siteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	info.PayPalProfileID = ""
	info.PaymentDueDate = nil
	return nil
}

func (f *tierInfoRepo) ListPaidWithoutSubscription(paidTierNames []string) ([]models.TierInfo, error) {
	paid := map[string]bool{}
	for _, name := range paidTierNames {
		paid[name] = true
	}
	var out []models.TierInfo
	for siteID, info := range f.s.Infos {
		site, ok := f.s.Sites[siteID]
		if !ok || !paid[site.TierName] || info.PayPalProfileID != "" {
			continue
		}
		out = append(out, *info)
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (f *userRepo) Create(user *models.User) error {
	f.s.Users = append(f.s.Users, *user)
	return nil
}

func (f *userRepo) GetByID(id uint) (*models.User, error) {
	for i := range f.s.Users {
		if f.s.Users[i].ID == id {
			cp := f.s.Users[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *userRepo) GetBySiteAndUsername(siteID uint, username string) (*models.User, error) {
	for i := range f.s.Users {
		if f.s.Users[i].SiteID == siteID && f.s.Users[i].Username == username {
			cp := f.s.Users[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *userRepo) Update(user *models.User) error {
	for i := range f.s.Users {
		if f.s.Users[i].ID == user.ID {
			f.s.Users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *userRepo) CountAdminsBySite(siteID uint) (int64, error) {
	admins, _ := f.ListAdminsBySite(siteID)
	return int64(len(admins)), nil
}

func (f *userRepo) ListAdminsBySite(siteID uint) ([]models.User, error) {
	var admins []models.User
	for _, u := range f.s.Users {
		if u.SiteID == siteID && u.IsAdmin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (f *userRepo) DemoteAdmins(siteID uint, ids []uint) (int64, error) {
	var n int64
	for _, id := range ids {
		for i := range f.s.Users {
			if f.s.Users[i].SiteID == siteID && f.s.Users[i].ID == id && f.s.Users[i].IsAdmin {
				f.s.Users[i].IsAdmin = false
				n++
			}
		}
	}
	return n, nil
}

type videoRepo struct{ s *Store }

func (f *videoRepo) Create(video *models.Video) error { return nil }
func (f *videoRepo) Update(video *models.Video) error { return nil }
func (f *videoRepo) Delete(id uint) error             { return nil }

func (f *videoRepo) GetByID(id uint) (*models.Video, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *videoRepo) GetByUUID(uuid string) (*models.Video, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *videoRepo) GetBySiteAndURL(siteID uint, url string) (*models.Video, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *videoRepo) CountActiveBySite(siteID uint) (int64, error) {
	return f.s.ActiveVideos[siteID], nil
}

func (f *videoRepo) ListBySite(siteID uint, q repository.VideoQuery) ([]models.Video, int64, error) {
	return nil, 0, nil
}

func (f *videoRepo) BulkSetStatus(siteID uint, ids []uint, status string) (int64, error) {
	return int64(len(ids)), nil
}

func (f *videoRepo) BulkSetCategory(siteID uint, ids []uint, categoryID *uint) (int64, error) {
	return int64(len(ids)), nil
}

func (f *videoRepo) BulkSetFeatured(siteID uint, ids []uint, featured bool) (int64, error) {
	return int64(len(ids)), nil
}

func (f *videoRepo) BulkDelete(siteID uint, ids []uint) (int64, error) {
	return int64(len(ids)), nil
}

func (f *videoRepo) HideActiveAboveLimit(siteID uint, limit int) (int64, error) {
	over := f.s.ActiveVideos[siteID] - int64(limit)
	if over <= 0 {
		return 0, nil
	}
	f.s.ActiveVideos[siteID] = int64(limit)
	return over, nil
}

type paymentEventRepo struct{ s *Store }

func (f *paymentEventRepo) CreateIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error) {
	for i := range f.s.Events {
		if f.s.Events[i].EventKey == event.EventKey {
			cp := f.s.Events[i]
			return false, &cp, nil
		}
	}
	cp := *event
	cp.ID = uint(len(f.s.Events) + 1)
	cp.CreatedAt = time.Now()
	f.s.Events = append(f.s.Events, cp)
	return true, &cp, nil
}

func (f *paymentEventRepo) MarkProcessed(id uint, processingError string) error {
	for i := range f.s.Events {
		if f.s.Events[i].ID == id {
			now := time.Now()
			f.s.Events[i].ProcessedAt = &now
			f.s.Events[i].ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *paymentEventRepo) ListUnprocessedOlderThan(cutoff time.Time) ([]models.PaymentEvent, error) {
	var out []models.PaymentEvent
	for _, ev := range f.s.Events {
		if ev.ProcessedAt == nil && ev.CreatedAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}
