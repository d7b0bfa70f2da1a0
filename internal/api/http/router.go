package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Accounts       *handlers.AccountsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

const (
	owner      = domain.RoleSystemOwner
	superAdmin = domain.RoleSuperAdmin
	admin      = domain.RoleAdmin
	itPerson   = domain.RoleITPerson
	user       = domain.RoleUser
)

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	authenticate := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", authenticate, cfg.Auth.Logout)

	registerTicketRoutes(api.Group("/tickets", authenticate, auth.RequireActive()), cfg)
	registerUserRoutes(api.Group("/users", authenticate, auth.RequireActive()), cfg)

	dashboard := api.Group("/dashboard", authenticate, auth.RequireActive())
	dashboard.Get("/stats", cfg.Dashboard.Stats)
	dashboard.Get("/historical", auth.RequireRoles(admin, superAdmin), cfg.Dashboard.Historical)

	adminGroup := api.Group("/admin", authenticate, auth.RequireRoles(admin))
	adminGroup.Post("/user", cfg.Accounts.CreateScoped)
	adminGroup.Get("/users", cfg.Accounts.ListUnder)
	adminGroup.Delete("/user/:id", cfg.Accounts.DeleteOf(itPerson, user))
	adminGroup.Get("/tickets", cfg.Tickets.List)
	adminGroup.Get("/tickets/filter", cfg.Tickets.FilterByDate)

	superGroup := api.Group("/superadmin", authenticate, auth.RequireRoles(superAdmin))
	superGroup.Post("/admin", cfg.Accounts.CreateAs(admin))
	superGroup.Delete("/admin/:id", cfg.Accounts.DeleteOf(admin))
	superGroup.Get("/users", cfg.Accounts.ListUnder)
	superGroup.Get("/tickets", cfg.Tickets.List)
	superGroup.Get("/tickets/filter", cfg.Tickets.FilterByDate)

	itGroup := api.Group("/it", authenticate, auth.RequireRoles(itPerson))
	itGroup.Post("/user", cfg.Accounts.CreateAs(user))
	itGroup.Get("/tickets", cfg.Tickets.ListAssigned)
	itGroup.Post("/tickets/raise", cfg.Tickets.Raise)
	itGroup.Put("/tickets/:ticketId/close", cfg.Tickets.Close)
	itGroup.Post("/tickets/:ticketId/notes", cfg.Tickets.AddNote)

	system := api.Group("/system", authenticate, auth.RequireRoles(owner))
	system.Post("/superadmin", cfg.Accounts.CreateAs(superAdmin))
	system.Put("/superadmin/:id/expiry", cfg.Accounts.UpdateExpiry)
	system.Delete("/superadmin/:id", cfg.Accounts.DeleteOf(superAdmin, domain.RoleExpired))
	system.Get("/users", cfg.Accounts.ListUnder)
	system.Get("/reports", cfg.Dashboard.SystemReport)
}

func registerTicketRoutes(tickets fiber.Router, cfg RouteConfig) {
	staff := auth.RequireRoles(admin, superAdmin, itPerson)

	tickets.Post("/", auth.RequireRoles(user), cfg.Tickets.Create)
	tickets.Get("/", staff, cfg.Tickets.List)
	tickets.Get("/assigned", auth.RequireRoles(itPerson), cfg.Tickets.ListAssigned)
	tickets.Get("/status/:status", staff, cfg.Tickets.ListByStatus)
	tickets.Get("/priority/:priority", staff, cfg.Tickets.ListByPriority)
	tickets.Get("/category/:category", staff, cfg.Tickets.ListByCategory)
	tickets.Get("/user/:userId", cfg.Tickets.ListForUser)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", auth.RequireRoles(admin, itPerson), cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/assign", auth.RequireRoles(admin, itPerson), cfg.Tickets.Assign)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)
	tickets.Get("/:id/notes", cfg.Tickets.ListNotes)
	tickets.Post("/:id/close", staff, cfg.Tickets.Close)
	tickets.Post("/:id/reopen", auth.RequireRoles(admin, itPerson), cfg.Tickets.Reopen)
	tickets.Delete("/:id", auth.RequireRoles(admin, superAdmin), cfg.Tickets.Delete)
}

func registerUserRoutes(users fiber.Router, cfg RouteConfig) {
	users.Post("/tickets", auth.RequireRoles(user), cfg.Tickets.Create)
	users.Get("/tickets", auth.RequireRoles(user), cfg.Tickets.ListMine)
	users.Get("/tickets/:ticketId/status", auth.RequireRoles(user), cfg.Tickets.Status)

	users.Get("/", auth.RequireRoles(admin, superAdmin), cfg.Users.List)
	users.Get("/me", cfg.Users.Me)
	users.Get("/role/:role", auth.RequireRoles(admin), cfg.Users.ListByRole)
	users.Get("/business-type/:businessType", auth.RequireRoles(admin), cfg.Users.ListByBusinessType)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.UpdateProfile)
	users.Delete("/:id", auth.RequireRoles(superAdmin), cfg.Users.Delete)
	users.Patch("/:id/role", auth.RequireRoles(superAdmin), cfg.Users.ChangeRole)
	users.Patch("/:id/business-type", auth.RequireRoles(admin), cfg.Users.UpdateBusinessType)
	users.Get("/:id/audit-logs", auth.RequireRoles(admin), cfg.Users.AuditLogs)
	users.Get("/:id/login-history", auth.RequireRoles(admin), cfg.Users.LoginHistory)
}
