package controllers

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
	"gorm.io/gorm"
)

var validate = validator.New()

// SubmitVideoRequest is the submission payload. Exactly one of FileURL or
// EmbedCode may back the website URL; with neither, the video becomes an
// embed request the admins complete later.
type SubmitVideoRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=250"`
	WebsiteURL   string `json:"website_url" form:"website_url" validate:"required,url,max=2048"`
	FileURL      string `json:"file_url" form:"file_url" validate:"omitempty,url,max=2048"`
	EmbedCode    string `json:"embed_code" form:"embed_code"`
	Description  string `json:"description" form:"description"`
	ThumbnailURL string `json:"thumbnail_url" form:"thumbnail_url" validate:"omitempty,url,max=2048"`
	ContactEmail string `json:"contact_email" form:"contact_email" validate:"omitempty,email"`
}

// videoFileExtensions marks URLs we can play directly without scraping.
var videoFileExtensions = map[string]bool{
	".mov": true, ".wmv": true, ".mp4": true, ".m4v": true,
	".ogg": true, ".ogv": true, ".anx": true, ".mpg": true,
	".avi": true, ".flv": true, ".webm": true,
}

func isVideoURL(rawURL string) bool {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return videoFileExtensions[strings.ToLower(path.Ext(trimmed))]
}

// canSubmit mirrors the original permission rules: open submission unless
// the site requires login; sites that hide the submit button accept
// submissions from admins only.
func canSubmit(site *models.Site, sc sitecontext.SiteContext) bool {
	if !site.SubmissionRequiresLogin {
		return true
	}
	if site.DisplaySubmitButton {
		return sc.IsLoggedIn
	}
	return sc.IsAdmin
}

// HandleSubmitVideo accepts a video submission for the current site.
// Admin submissions go live immediately; everything else waits in the
// moderation queue. The tier's video limit is enforced before anything is
// written.
func HandleSubmitVideo(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	repos := repository.GetGlobalRepositories()

	site, err := repos.Site.GetByID(sc.SiteID)
	if err != nil {
		return err
	}
	if !canSubmit(site, sc) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "submission requires login on this site",
		})
	}

	var req SubmitVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Duplicate URLs resurface the existing video instead of a new copy.
	if existing, err := repos.Video.GetBySiteAndURL(sc.SiteID, req.WebsiteURL); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "video was already submitted",
			"duplicate": true,
			"uuid":      existing.UUID,
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	tier, err := tiers.Resolve(site.TierName)
	if err != nil {
		tier = tiers.Lowest()
	}
	if tier.VideoLimit != tiers.Unlimited {
		active, err := repos.Video.CountActiveBySite(sc.SiteID)
		if err != nil {
			return err
		}
		if active >= int64(tier.VideoLimit) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "this site has reached its video limit",
			})
		}
	}

	video := &models.Video{
		UUID:         uuid.NewString(),
		SiteID:       sc.SiteID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		WebsiteURL:   req.WebsiteURL,
		EmbedCode:    req.EmbedCode,
		ThumbnailURL: req.ThumbnailURL,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Status:       models.VideoStatusUnapproved,
	}
	if req.FileURL != "" {
		video.FileURL = req.FileURL
	} else if isVideoURL(req.WebsiteURL) {
		video.FileURL = req.WebsiteURL
	}
	if sc.IsLoggedIn {
		video.SubmitterID = &sc.UserID
	}
	if sc.IsAdmin {
		now := time.Now()
		video.Status = models.VideoStatusActive
		video.WhenApproved = &now
	}

	if err := repos.Video.Create(video); err != nil {
		return err
	}

	kind := "embedrequest"
	if video.IsPlayable() {
		kind = "scraped"
		if video.EmbedCode == "" {
			kind = "directlink"
		}
	}
	log.Infof("site %d: new %s video submission %s (%q)", sc.SiteID, kind, video.UUID, video.Name)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":   video.UUID,
		"status": video.Status,
		"kind":   kind,
	})
}
