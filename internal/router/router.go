// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/selvawasi/selvawasi-api/internal/config"
	"github.com/selvawasi/selvawasi-api/internal/handler"
	"github.com/selvawasi/selvawasi-api/internal/middleware"
	"github.com/selvawasi/selvawasi-api/internal/model"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Operators    *handler.OperatorHandler
	Boats        *handler.BoatHandler
	Routes       *handler.RouteHandler
	Schedules    *handler.ScheduleHandler
	Experiences  *handler.ExperienceHandler
	Restaurants  *handler.RestaurantHandler
	Bookings     *handler.BookingHandler
	Reservations *handler.ReservationHandler
	Admin        *handler.AdminHandler
	Debug        *handler.DebugHandler
}

// Options carries the middleware settings.  A nil Redis client turns the
// cache and the rate limiter into pass-throughs.
type Options struct {
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// New builds the echo instance with every route registered.
func New(db *sqlx.DB, h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.NewTokenBucket(opt.RateLimit, opt.Redis, opt.JWTSecret))

	e.GET("/healthz", handler.Health(db))
	e.GET("/debug/seed", h.Debug.Seed)

	RegisterAuth(e, h.Auth, opt.JWTSecret)
	RegisterCatalogue(e, h, opt)
	RegisterTravel(e, h, opt.JWTSecret)
	RegisterAdmin(e, h, opt.JWTSecret)
	return e
}

// RegisterAuth mounts /auth.  Only /auth/me needs an access token; the
// refresh endpoints authenticate with the refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, secret string) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(secret))
}

// RegisterCatalogue mounts the public read endpoints behind the response
// cache, and their ADMIN-only writes.
func RegisterCatalogue(e *echo.Echo, h Handlers, opt Options) {
	cache := middleware.NewRedisCache(opt.Cache, opt.Redis)
	admin := []echo.MiddlewareFunc{middleware.JWTAuth(opt.JWTSecret), middleware.RequireRole(model.RoleAdmin)}

	ops := e.Group("/operators")
	ops.GET("", h.Operators.List, cache)
	ops.GET("/:id", h.Operators.Get, cache)
	ops.POST("", h.Operators.Create, admin...)
	ops.PATCH("/:id", h.Operators.Update, admin...)
	ops.DELETE("/:id", h.Operators.Delete, admin...)

	boats := e.Group("/boats")
	boats.GET("", h.Boats.List, cache)
	boats.GET("/:id", h.Boats.Get, cache)
	boats.POST("", h.Boats.Create, admin...)
	boats.PATCH("/:id", h.Boats.Update, admin...)
	boats.DELETE("/:id", h.Boats.Delete, admin...)

	routes := e.Group("/routes")
	routes.GET("", h.Routes.List, cache)
	routes.GET("/:id", h.Routes.Get, cache)
	routes.POST("", h.Routes.Create, admin...)
	routes.PATCH("/:id", h.Routes.Update, admin...)
	routes.DELETE("/:id", h.Routes.Delete, admin...)

	// Availability changes with every booking, so it bypasses the cache.
	sch := e.Group("/schedules")
	sch.GET("", h.Schedules.List, cache)
	sch.GET("/:id", h.Schedules.Get, cache)
	sch.GET("/:id/availability", h.Schedules.Availability)
	sch.POST("", h.Schedules.Create, admin...)
	sch.PATCH("/:id", h.Schedules.Update, admin...)
	sch.DELETE("/:id", h.Schedules.Delete, admin...)
	sch.POST("/:id/prices", h.Schedules.CreatePrice, admin...)
	e.PATCH("/prices/:id", h.Schedules.UpdatePrice, admin...)
	e.DELETE("/prices/:id", h.Schedules.DeletePrice, admin...)

	exp := e.Group("/experiences")
	exp.GET("", h.Experiences.List, cache)
	exp.GET("/:id", h.Experiences.Get, cache)
	exp.POST("", h.Experiences.Create, admin...)
	exp.PATCH("/:id", h.Experiences.Update, admin...)
	exp.DELETE("/:id", h.Experiences.Delete, admin...)

	auth := middleware.JWTAuth(opt.JWTSecret)
	rest := e.Group("/restaurants")
	rest.GET("", h.Restaurants.List, cache)
	rest.GET("/:id", h.Restaurants.Get, cache)
	rest.POST("", h.Restaurants.Create, auth, middleware.RequireRole(model.RoleRestaurantOwner, model.RoleAdmin))
	rest.PATCH("/:id", h.Restaurants.Update, auth)
	rest.DELETE("/:id", h.Restaurants.Delete, auth)
	rest.POST("/:id/dishes", h.Restaurants.CreateDish, auth)
	rest.POST("/:id/reviews", h.Restaurants.CreateReview, auth)
	e.DELETE("/dishes/:id", h.Restaurants.DeleteDish, auth)
}

// RegisterTravel mounts the traveller endpoints: bookings and restaurant
// reservations.  All of them require a signed-in caller.
func RegisterTravel(e *echo.Echo, h Handlers, secret string) {
	admin := middleware.RequireRole(model.RoleAdmin)

	b := e.Group("/bookings", middleware.JWTAuth(secret))
	b.POST("", h.Bookings.Create)
	b.GET("/my-bookings", h.Bookings.Mine)
	b.GET("/:id", h.Bookings.Get)
	b.PATCH("/:id/cancel", h.Bookings.Cancel)
	b.GET("", h.Bookings.List, admin)
	b.DELETE("/:id", h.Bookings.Delete, admin)

	r := e.Group("/reservations", middleware.JWTAuth(secret))
	r.POST("", h.Reservations.Create)
	r.GET("/my-reservations", h.Reservations.Mine)
	r.GET("/owner", h.Reservations.Owner, middleware.RequireRole(model.RoleRestaurantOwner, model.RoleAdmin))
	r.PATCH("/:id/status", h.Reservations.UpdateStatus)
}

// RegisterAdmin mounts the dashboard.
func RegisterAdmin(e *echo.Echo, h Handlers, secret string) {
	g := e.Group("/admin", middleware.JWTAuth(secret), middleware.RequireRole(model.RoleAdmin))
	g.GET("/stats", h.Admin.GetStats)
	g.GET("/activity", h.Admin.Activity)
}
