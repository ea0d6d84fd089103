package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealer-service/internal/api/http/handlers"
	"github.com/spec-kit/dealer-service/internal/auth"
	"github.com/spec-kit/dealer-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Customers      *handlers.CustomersHandler
	Vehicles       *handlers.VehiclesHandler
	Activities     *handlers.ActivitiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The auth group's public endpoints mirror
// the client's public-route allow-list: no bearer token expected there.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh-token", cfg.Auth.Refresh)
	authGroup.Post("/account-activation", cfg.Auth.ActivateAccount)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateMe)
	users.Get("", cfg.Users.List)
	users.Post("", auth.RequireRole(domain.RoleSuperadmin), cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", auth.RequireRole(domain.RoleSuperadmin), cfg.Users.Update)

	customers := app.Group("/customers", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	customers.Get("/search", cfg.Customers.Search)
	customers.Post("/customer", cfg.Customers.Assign)
	customers.Get("", cfg.Customers.List)
	customers.Post("", cfg.Customers.Create)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Delete("/:id", auth.RequireRole(domain.RoleSuperadmin, domain.RoleManager), cfg.Customers.Delete)

	vehicles := app.Group("/vehicles", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	vehicles.Get("/locations", cfg.Vehicles.Locations)
	vehicles.Get("", cfg.Vehicles.List)
	vehicles.Post("", cfg.Vehicles.Create)
	vehicles.Get("/:id", cfg.Vehicles.Get)
	vehicles.Put("/:id", cfg.Vehicles.Update)
	vehicles.Delete("/:id", auth.RequireRole(domain.RoleSuperadmin, domain.RoleManager), cfg.Vehicles.Delete)

	activities := app.Group("/activities", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	activities.Get("", cfg.Activities.List)
}
