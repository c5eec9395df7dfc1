package api

import (
	"net/http"
	"strconv"

	"airport_service/pkg/auth"
	"airport_service/pkg/booking"
	"airport_service/pkg/database"
	"airport_service/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	log      *zap.Logger
	users    *auth.Service
	registry *registry.Registry
	flights  *booking.Flights
	orders   *booking.Orders
}

func NewHandler(db *gorm.DB, log *zap.Logger, users *auth.Service, reg *registry.Registry) *Handler {
	return &Handler{
		db:       db,
		log:      log,
		users:    users,
		registry: reg,
		flights:  booking.NewFlights(db),
		orders:   booking.NewOrders(db),
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// idParam parses :id; a malformed id can never match a record.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *gin.Context) uint {
	id, _ := auth.UserIDFrom(c)
	return id
}
