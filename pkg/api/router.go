package api

import (
	"net/http"
	"time"

	"airport_service/pkg/auth"
	"airport_service/pkg/middleware"
	"airport_service/pkg/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	Tokens      *auth.TokenManager
	MediaDir    string
	CORSOrigins []string
	// Idempotency, when set, guards order creation.
	Idempotency gin.HandlerFunc
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method \"" + c.Request.Method + "\" not allowed."})
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		telemetry.Middleware(),
		middleware.Logger(h.log),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	engine.GET("/manage/health", h.healthCheck)
	if opts.MediaDir != "" {
		engine.Static("/media", opts.MediaDir)
	}

	api := engine.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", h.register)
	users.POST("/token", h.token)
	users.GET("/me", auth.Authenticate(opts.Tokens), h.me)

	authed := api.Group("", auth.Authenticate(opts.Tokens))

	catalog := authed.Group("", auth.StaffOrReadOnly())
	catalog.GET("/airports", h.listAirports)
	catalog.POST("/airports", h.createAirport)
	catalog.GET("/routes", h.listRoutes)
	catalog.POST("/routes", h.createRoute)
	catalog.GET("/airplane_manufacturers", h.listManufacturers)
	catalog.POST("/airplane_manufacturers", h.createManufacturer)
	catalog.GET("/airplane_types", h.listAirplaneTypes)
	catalog.POST("/airplane_types", h.createAirplaneType)
	catalog.GET("/airplanes", h.listAirplanes)
	catalog.POST("/airplanes", h.createAirplane)
	catalog.GET("/airplanes/:id", h.getAirplane)
	catalog.POST("/airplanes/:id/upload-image", h.uploadAirplaneImage)
	catalog.GET("/flights", h.listFlights)
	catalog.POST("/flights", h.createFlight)
	catalog.GET("/flights/:id", h.getFlight)

	staff := authed.Group("", auth.StaffOnly())
	staff.GET("/crew_positions", h.listCrewPositions)
	staff.POST("/crew_positions", h.createCrewPosition)
	staff.GET("/crews", h.listCrew)
	staff.POST("/crews", h.createCrew)

	orders := authed.Group("/orders")
	orders.GET("", h.listOrders)
	if opts.Idempotency != nil {
		orders.POST("", opts.Idempotency, h.createOrder)
	} else {
		orders.POST("", h.createOrder)
	}
	orders.GET("/:id", h.getOrder)
	orders.DELETE("/:id", h.deleteOrder)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.IdempotencyKeyHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, telemetry.TraceIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
