package api

import (
	"net/http"

	"airport_service/pkg/booking"

	"github.com/gin-gonic/gin"
)

const orderPageSize = 10

type orderRequest struct {
	Tickets []struct {
		Row    int  `json:"row"`
		Seat   int  `json:"seat"`
		Flight uint `json:"flight"`
	} `json:"tickets"`
}

func (h *Handler) listOrders(c *gin.Context) {
	p := parsePage(c, orderPageSize)
	rows, total, err := h.orders.List(c.Request.Context(), currentUser(c), p.Offset(), p.Size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]gin.H, len(rows))
	for i, r := range rows {
		items[i] = orderListJSON(r)
	}
	c.JSON(http.StatusOK, paginated(p, total, items))
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderDetailJSON(*order))
}

func (h *Handler) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	specs := make([]booking.TicketSpec, len(req.Tickets))
	for i, t := range req.Tickets {
		specs[i] = booking.TicketSpec{Row: t.Row, Seat: t.Seat, FlightID: t.Flight}
	}
	order, err := h.orders.Create(c.Request.Context(), currentUser(c), specs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderJSON(*order))
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
