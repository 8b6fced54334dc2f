package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/telecom-backoffice/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
// A nil Metrics handler leaves /metrics unregistered.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Users     *handlers.UsersHandler
	Packages  *handlers.PackagesHandler
	Bills     *handlers.BillsHandler
	Tickets   *handlers.TicketsHandler
	Campaigns *handlers.CampaignsHandler
	UserInfo  *handlers.UserInfoHandler
	Metrics   http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	api := app.Group("/api/v1")

	users := api.Group("/users")
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)

	packages := api.Group("/packages")
	packages.Post("/", cfg.Packages.Create)
	packages.Get("/", cfg.Packages.List)
	packages.Get("/:id", cfg.Packages.Get)
	packages.Put("/:id", cfg.Packages.Update)
	packages.Delete("/:id", cfg.Packages.Delete)

	bills := api.Group("/bills")
	bills.Post("/", cfg.Bills.Create)
	bills.Get("/", cfg.Bills.List)
	bills.Get("/:id", cfg.Bills.Get)
	bills.Post("/:id/pay", cfg.Bills.Pay)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/resolve", cfg.Tickets.ResolveTicket)

	// Static segments are registered before /:id so they are not captured as ids.
	campaigns := api.Group("/campaigns")
	campaigns.Post("/expire", cfg.Campaigns.Expire)
	campaigns.Get("/user/:userId", cfg.Campaigns.UserCampaigns)
	campaigns.Get("/eligible/:userId", cfg.Campaigns.Eligible)
	campaigns.Post("/", cfg.Campaigns.Create)
	campaigns.Get("/", cfg.Campaigns.List)
	campaigns.Get("/:id", cfg.Campaigns.Get)
	campaigns.Put("/:id", cfg.Campaigns.Update)
	campaigns.Delete("/:id", cfg.Campaigns.Delete)
	campaigns.Post("/:id/apply/:userId", cfg.Campaigns.Apply)
	campaigns.Get("/:id/analytics", cfg.Campaigns.Analytics)

	userInfo := api.Group("/user-info/:id")
	userInfo.Get("/package", cfg.UserInfo.Package)
	userInfo.Get("/bills", cfg.UserInfo.Bills)
	userInfo.Get("/tickets", cfg.UserInfo.Tickets)
	userInfo.Get("/complete", cfg.UserInfo.Complete)
	userInfo.Get("/dashboard", cfg.UserInfo.Dashboard)
}
