package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/mirocommunity/localtv/app/repository"
	"github.com/mirocommunity/localtv/internal/pkg/sitecontext"
	"github.com/mirocommunity/localtv/internal/pkg/tiers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1")
	v1.Get("/tiers", handleListTiers)
	v1.Get("/videos", handleListVideos)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func handleListTiers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tiers": tiers.All()})
}

func handleListVideos(c *fiber.Ctx) error {
	sc := sitecontext.GetSiteContext(c)
	videos, total, err := repository.GetGlobalRepositories().Video.ListBySite(sc.SiteID, repository.VideoQuery{
		Limit: 30,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"videos": videos, "total": total})
}
