package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/api/http/handlers"
	"github.com/deskline/service-desk/internal/auth"
	"github.com/deskline/service-desk/internal/observability"
	"github.com/deskline/service-desk/internal/policy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Teams          *handlers.TeamsHandler
	Workflows      *handlers.WorkflowsHandler
	Assets         *handlers.AssetsHandler
	Knowledge      *handlers.KnowledgeHandler
	Organization   *handlers.OrganizationHandler
	Metrics        *handlers.MetricsHandler
	Stream         *handlers.StreamHandler
	AuthMiddleware *auth.AuthMiddleware
	Counters       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	can := func(resource policy.Resource, action policy.Action) fiber.Handler {
		return auth.Authorize(resource, action, cfg.Counters)
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	if cfg.Stream != nil {
		app.Get("/ws/tickets",
			cfg.Stream.RequireUpgrade,
			cfg.AuthMiddleware.Handle,
			can(policy.ResourceTickets, policy.ActionRead),
			cfg.Stream.Tickets())
	}

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	me.Get("/permissions", cfg.Users.Permissions)

	workflows := app.Group("/workflows", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	workflows.Post("/test", cfg.Workflows.Test)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", can(policy.ResourceTickets, policy.ActionCreate), cfg.Tickets.CreateTicket)
	tickets.Get("/", can(policy.ResourceTickets, policy.ActionRead), cfg.Tickets.ListTickets)
	tickets.Get("/:id", can(policy.ResourceTickets, policy.ActionRead), cfg.Tickets.GetTicket)
	tickets.Patch("/:id", can(policy.ResourceTickets, policy.ActionUpdate), cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", can(policy.ResourceTickets, policy.ActionDelete), cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/transitions", can(policy.ResourceTickets, policy.ActionRead), cfg.Tickets.Transitions)
	tickets.Post("/:id/status", can(policy.ResourceTickets, policy.ActionTransition), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", can(policy.ResourceTickets, policy.ActionAssign), cfg.Tickets.AssignTicket)
	tickets.Get("/:id/comments", can(policy.ResourceTickets, policy.ActionRead), cfg.Tickets.ListComments)
	// requesters may reply on their own tickets; the service demands tickets:update otherwise
	tickets.Post("/:id/comments", can(policy.ResourceTickets, policy.ActionRead), cfg.Tickets.AddComment)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", can(policy.ResourceUsers, policy.ActionRead), cfg.Users.List)
	users.Get("/:id", can(policy.ResourceUsers, policy.ActionRead), cfg.Users.Get)
	users.Patch("/:id", can(policy.ResourceUsers, policy.ActionUpdate), cfg.Users.Update)
	users.Put("/:id/role", can(policy.ResourceRoles, policy.ActionUpdate), cfg.Users.ChangeRole)

	teams := app.Group("/teams", cfg.AuthMiddleware.Handle)
	teams.Post("/", can(policy.ResourceTeams, policy.ActionCreate), cfg.Teams.Create)
	teams.Get("/", can(policy.ResourceTeams, policy.ActionRead), cfg.Teams.List)
	teams.Get("/:id", can(policy.ResourceTeams, policy.ActionRead), cfg.Teams.Get)
	teams.Put("/:id", can(policy.ResourceTeams, policy.ActionUpdate), cfg.Teams.Update)
	teams.Delete("/:id", can(policy.ResourceTeams, policy.ActionDelete), cfg.Teams.Delete)

	if cfg.Assets != nil {
		assets := app.Group("/assets", cfg.AuthMiddleware.Handle)
		assets.Post("/", can(policy.ResourceAssets, policy.ActionCreate), cfg.Assets.Create)
		assets.Get("/", can(policy.ResourceAssets, policy.ActionRead), cfg.Assets.List)
		assets.Get("/:id", can(policy.ResourceAssets, policy.ActionRead), cfg.Assets.Get)
		assets.Patch("/:id", can(policy.ResourceAssets, policy.ActionUpdate), cfg.Assets.Update)
		assets.Delete("/:id", can(policy.ResourceAssets, policy.ActionDelete), cfg.Assets.Delete)

		assetTypes := app.Group("/asset-types", cfg.AuthMiddleware.Handle)
		assetTypes.Get("/", can(policy.ResourceAssets, policy.ActionRead), cfg.Assets.ListTypes)
		assetTypes.Post("/", can(policy.ResourceAssets, policy.ActionCreate), cfg.Assets.CreateType)
	}

	if cfg.Knowledge != nil {
		articles := app.Group("/knowledge/articles", cfg.AuthMiddleware.Handle)
		articles.Post("/", can(policy.ResourceKnowledge, policy.ActionCreate), cfg.Knowledge.Create)
		articles.Get("/", can(policy.ResourceKnowledge, policy.ActionRead), cfg.Knowledge.List)
		articles.Get("/:id", can(policy.ResourceKnowledge, policy.ActionRead), cfg.Knowledge.Get)
		articles.Patch("/:id", can(policy.ResourceKnowledge, policy.ActionUpdate), cfg.Knowledge.Update)
		articles.Delete("/:id", can(policy.ResourceKnowledge, policy.ActionDelete), cfg.Knowledge.Delete)
		articles.Post("/:id/feedback", can(policy.ResourceKnowledge, policy.ActionRead), cfg.Knowledge.Vote)
	}

	if cfg.Organization != nil {
		org := app.Group("/organization", cfg.AuthMiddleware.Handle)
		org.Get("/", can(policy.ResourceOrganizations, policy.ActionRead), cfg.Organization.Get)
		org.Patch("/", can(policy.ResourceOrganizations, policy.ActionUpdate), cfg.Organization.Update)
	}
}
