package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mirocommunity/localtv/app/models"
	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
)

const bulkEditPageSize = 30

// HandleBulkEditList returns the filtered, sorted and paginated video list
// for the admin bulk edit screen.
func HandleBulkEditList(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return c.Status(fiber.StatusBadRequest).SendString("Not a page number")
	}

	q := repository.VideoQuery{
		Filter: c.Query("filter"),
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
		Offset: (page - 1) * bulkEditPageSize,
		Limit:  bulkEditPageSize,
	}
	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q.CategoryID = uint(id)
		}
	}

	videos, total, err := repos.Video.ListBySite(sc.SiteID, q)
	if err != nil {
		return err
	}

	categories, err := repos.Category.ListBySite(sc.SiteID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"videos":     videos,
		"total":      total,
		"page":       page,
		"page_size":  bulkEditPageSize,
		"categories": categories,
	})
}

// BulkEditRequest selects videos and the action to run over them.
type BulkEditRequest struct {
	IDs        []uint `json:"ids" form:"ids"`
	Action     string `json:"action" form:"action"`
	CategoryID uint   `json:"category_id" form:"category_id"`
}

// HandleBulkEditUpdate runs one moderation action over the selected
// videos: approve, reject, feature, unfeature, delete or assign-category.
func HandleBulkEditUpdate(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	repos := repository.GetGlobalRepositories()

	var req BulkEditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no videos selected"})
	}

	var affected int64
	var err error
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		affected, err = repos.Video.BulkSetStatus(sc.SiteID, req.IDs, models.VideoStatusActive)
	case "reject":
		affected, err = repos.Video.BulkSetStatus(sc.SiteID, req.IDs, models.VideoStatusRejected)
	case "feature":
		affected, err = repos.Video.BulkSetFeatured(sc.SiteID, req.IDs, true)
	case "unfeature":
		affected, err = repos.Video.BulkSetFeatured(sc.SiteID, req.IDs, false)
	case "delete":
		affected, err = repos.Video.BulkDelete(sc.SiteID, req.IDs)
	case "assign-category":
		if req.CategoryID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "category_id required"})
		}
		if _, err := repos.Category.GetByID(req.CategoryID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
		}
		affected, err = repos.Video.BulkSetCategory(sc.SiteID, req.IDs, &req.CategoryID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"affected": affected})
}
