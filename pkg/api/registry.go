package api

import (
	"net/http"

	"airport_service/pkg/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listAirports(c *gin.Context) {
	airports, err := h.registry.ListAirports(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(airports))
	for i, a := range airports {
		items[i] = airportJSON(a)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createAirport(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		ClosestBigCity string `json:"closest_big_city" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	airport := models.Airport{Name: req.Name, ClosestBigCity: req.ClosestBigCity}
	if err := h.registry.CreateAirport(c.Request.Context(), &airport); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, airportJSON(airport))
}

func (h *Handler) listRoutes(c *gin.Context) {
	routes, err := h.registry.ListRoutes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(routes))
	for i, r := range routes {
		items[i] = routeListJSON(r)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createRoute(c *gin.Context) {
	var req struct {
		Source      uint `json:"source" binding:"required"`
		Destination uint `json:"destination" binding:"required"`
		Distance    int  `json:"distance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	route := models.Route{SourceID: req.Source, DestinationID: req.Destination, Distance: req.Distance}
	if err := h.registry.CreateRoute(c.Request.Context(), &route); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routeJSON(route))
}

func (h *Handler) listManufacturers(c *gin.Context) {
	manufacturers, err := h.registry.ListManufacturers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(manufacturers))
	for i, m := range manufacturers {
		items[i] = manufacturerJSON(m)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createManufacturer(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m := models.AirplaneManufacturer{Name: req.Name}
	if err := h.registry.CreateManufacturer(c.Request.Context(), &m); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, manufacturerJSON(m))
}

func (h *Handler) listAirplaneTypes(c *gin.Context) {
	types, err := h.registry.ListAirplaneTypes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(types))
	for i, t := range types {
		items[i] = airplaneTypeListJSON(t)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createAirplaneType(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Manufacturer *uint  `json:"manufacturer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t := models.AirplaneType{Name: req.Name, ManufacturerID: req.Manufacturer}
	if err := h.registry.CreateAirplaneType(c.Request.Context(), &t); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, airplaneTypeJSON(t))
}

func (h *Handler) listAirplanes(c *gin.Context) {
	airplanes, err := h.registry.ListAirplanes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(airplanes))
	for i, a := range airplanes {
		items[i] = airplaneListJSON(a)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getAirplane(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	airplane, err := h.registry.GetAirplane(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, airplaneDetailJSON(*airplane))
}

func (h *Handler) createAirplane(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Rows         int    `json:"rows" binding:"required"`
		SeatsInRow   int    `json:"seats_in_row" binding:"required"`
		AirplaneType uint   `json:"airplane_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a := models.Airplane{Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow, AirplaneTypeID: req.AirplaneType}
	if err := h.registry.CreateAirplane(c.Request.Context(), &a); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, airplaneJSON(a))
}

func (h *Handler) uploadAirplaneImage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"image": []string{"No file was submitted."}}})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	airplane, err := h.registry.UploadAirplaneImage(c.Request.Context(), id, fh.Filename, f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, airplaneImageJSON(*airplane))
}

func (h *Handler) listCrewPositions(c *gin.Context) {
	positions, err := h.registry.ListCrewPositions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(positions))
	for i, p := range positions {
		items[i] = crewPositionJSON(p)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createCrewPosition(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := models.CrewPosition{Name: req.Name}
	if err := h.registry.CreateCrewPosition(c.Request.Context(), &p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, crewPositionJSON(p))
}

func (h *Handler) listCrew(c *gin.Context) {
	crew, err := h.registry.ListCrew(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(crew))
	for i, m := range crew {
		items[i] = crewListJSON(m)
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createCrew(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Position  uint   `json:"position" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m := models.Crew{FirstName: req.FirstName, LastName: req.LastName, PositionID: req.Position}
	if err := h.registry.CreateCrew(c.Request.Context(), &m); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, crewJSON(m))
}
