package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"eventreg/cmd/middleware"
	"eventreg/internal/service"
)

type Routers struct {
	Service   service.Service
	JWTSecret string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/api")

	apiGroup.GET("/health", r.Service.Health)
	apiGroup.POST("/register", r.Service.Register)
	apiGroup.GET("/registrations", r.Service.RecentRegistrations)
	apiGroup.GET("/events", r.Service.AllEvents)
	apiGroup.GET("/events/:id", r.Service.EventByID)
	apiGroup.POST("/admin/login", r.Service.Login)

	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(r.JWTSecret))

	adminGroup.POST("/events", r.Service.CreateEvent)
	adminGroup.PUT("/events/:id", r.Service.UpdateEvent)
	adminGroup.DELETE("/events/:id", r.Service.DeleteEvent)
	adminGroup.GET("/events/:id/registrations", r.Service.RegistrationsForEvent)
	adminGroup.GET("/registrations", r.Service.AllRegistrations)
	adminGroup.GET("/registrations/by-email", r.Service.RegistrationsForEmail)

	return app
}
