package api

import (
	"net/http"
	"time"

	"airport_service/pkg/booking"

	"github.com/gin-gonic/gin"
)

const flightPageSize = 20

type flightRequest struct {
	Route         uint      `json:"route" binding:"required"`
	Airplane      uint      `json:"airplane" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	Crew          []uint    `json:"crew"`
}

func (h *Handler) listFlights(c *gin.Context) {
	filter, err := booking.ParseFlightFilter(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err)
		return
	}
	p := parsePage(c, flightPageSize)
	rows, total, err := h.flights.List(c.Request.Context(), filter, p.Offset(), p.Size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(rows))
	for i, r := range rows {
		items[i] = flightListJSON(r)
	}
	c.JSON(http.StatusOK, paginated(p, total, items))
}

func (h *Handler) getFlight(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	flight, err := h.flights.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	available, err := h.flights.TicketsAvailable(ctx, flight)
	if err != nil {
		h.respondError(c, err)
		return
	}
	taken, err := h.flights.TakenPlaces(ctx, flight.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightDetailJSON(*flight, available, taken))
}

func (h *Handler) createFlight(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	flight, err := h.flights.Create(c.Request.Context(), booking.FlightInput{
		RouteID:       req.Route,
		AirplaneID:    req.Airplane,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		CrewIDs:       req.Crew,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flightJSON(*flight))
}
