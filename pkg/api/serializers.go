package api

import (
	"path"
	"time"

	"airport_service/pkg/booking"
	"airport_service/pkg/models"

	"github.com/gin-gonic/gin"
)

const mediaURL = "/media/"

func airportJSON(a models.Airport) gin.H {
	return gin.H{"id": a.ID, "name": a.Name, "closest_big_city": a.ClosestBigCity}
}

func routeJSON(r models.Route) gin.H {
	return gin.H{"id": r.ID, "source": r.SourceID, "destination": r.DestinationID, "distance": r.Distance}
}

func routeListJSON(r models.Route) gin.H {
	return gin.H{
		"id":          r.ID,
		"source":      r.Source.NameCity(),
		"destination": r.Destination.NameCity(),
		"distance":    r.Distance,
	}
}

func manufacturerJSON(m models.AirplaneManufacturer) gin.H {
	return gin.H{"id": m.ID, "name": m.Name}
}

func airplaneTypeJSON(t models.AirplaneType) gin.H {
	return gin.H{"id": t.ID, "name": t.Name, "manufacturer": t.ManufacturerID}
}

func airplaneTypeListJSON(t models.AirplaneType) gin.H {
	return gin.H{"id": t.ID, "name": t.Name, "manufacturer": manufacturerName(t.Manufacturer)}
}

func airplaneJSON(a models.Airplane) gin.H {
	return gin.H{
		"id":            a.ID,
		"name":          a.Name,
		"rows":          a.Rows,
		"seats_in_row":  a.SeatsInRow,
		"airplane_type": a.AirplaneTypeID,
	}
}

func airplaneListJSON(a models.Airplane) gin.H {
	return gin.H{
		"id":                    a.ID,
		"name":                  a.Name,
		"rows":                  a.Rows,
		"seats_in_row":          a.SeatsInRow,
		"capacity":              a.Capacity(),
		"airplane_type":         a.AirplaneType.Name,
		"airplane_manufacturer": manufacturerName(a.AirplaneType.Manufacturer),
	}
}

func airplaneDetailJSON(a models.Airplane) gin.H {
	return gin.H{
		"id":                    a.ID,
		"name":                  a.Name,
		"rows":                  a.Rows,
		"seats_in_row":          a.SeatsInRow,
		"capacity":              a.Capacity(),
		"airplane_type":         airplaneTypeJSON(a.AirplaneType),
		"airplane_manufacturer": manufacturerName(a.AirplaneType.Manufacturer),
		"image":                 imageURL(a.Image),
	}
}

func airplaneImageJSON(a models.Airplane) gin.H {
	return gin.H{"id": a.ID, "image": imageURL(a.Image)}
}

func imageURL(rel string) interface{} {
	if rel == "" {
		return nil
	}
	return path.Join(mediaURL, rel)
}

func manufacturerName(m *models.AirplaneManufacturer) interface{} {
	if m == nil {
		return nil
	}
	return m.Name
}

func crewPositionJSON(p models.CrewPosition) gin.H {
	return gin.H{"id": p.ID, "name": p.Name}
}

func crewJSON(c models.Crew) gin.H {
	return gin.H{"id": c.ID, "first_name": c.FirstName, "last_name": c.LastName, "position": c.PositionID}
}

func crewListJSON(c models.Crew) gin.H {
	return gin.H{"id": c.ID, "position": c.Position.Name, "first_name": c.FirstName, "last_name": c.LastName}
}

func timeJSON(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func flightJSON(f models.Flight) gin.H {
	crew := make([]uint, len(f.Crew))
	for i, c := range f.Crew {
		crew[i] = c.ID
	}
	return gin.H{
		"id":             f.ID,
		"route":          f.RouteID,
		"airplane":       f.AirplaneID,
		"departure_time": timeJSON(f.DepartureTime),
		"arrival_time":   timeJSON(f.ArrivalTime),
		"crew":           crew,
	}
}

func flightListJSON(row booking.FlightRow) gin.H {
	f := row.Flight
	return gin.H{
		"id":                f.ID,
		"route_source":      f.Route.Source.NameCity(),
		"route_dest":        f.Route.Destination.NameCity(),
		"departure_time":    timeJSON(f.DepartureTime),
		"arrival_time":      timeJSON(f.ArrivalTime),
		"airplane_name":     f.Airplane.Name,
		"airplane_capacity": f.Airplane.Capacity(),
		"tickets_available": row.TicketsAvailable,
	}
}

func flightDetailJSON(f models.Flight, ticketsAvailable int, taken []models.Ticket) gin.H {
	crew := make([]string, len(f.Crew))
	for i, c := range f.Crew {
		crew[i] = c.PositionName()
	}
	return gin.H{
		"id":                f.ID,
		"route_source":      f.Route.Source.NameCity(),
		"route_dest":        f.Route.Destination.NameCity(),
		"departure_time":    timeJSON(f.DepartureTime),
		"arrival_time":      timeJSON(f.ArrivalTime),
		"tickets_available": ticketsAvailable,
		"airplane":          airplaneListJSON(f.Airplane),
		"crew":              crew,
		"taken_places":      seatsJSON(taken),
	}
}

func seatsJSON(tickets []models.Ticket) []gin.H {
	out := make([]gin.H, len(tickets))
	for i, t := range tickets {
		out[i] = gin.H{"row": t.Row, "seat": t.Seat}
	}
	return out
}

func orderJSON(o models.Order) gin.H {
	tickets := make([]gin.H, len(o.Tickets))
	for i, t := range o.Tickets {
		tickets[i] = gin.H{"id": t.ID, "row": t.Row, "seat": t.Seat, "flight": t.FlightID}
	}
	return gin.H{"id": o.ID, "created_at": timeJSON(o.CreatedAt), "tickets": tickets}
}

func orderListJSON(row booking.OrderRow) gin.H {
	o := row.Order
	tickets := make([]gin.H, len(o.Tickets))
	for i, t := range o.Tickets {
		tickets[i] = gin.H{
			"id":     t.ID,
			"row":    t.Row,
			"seat":   t.Seat,
			"flight": flightListJSON(booking.FlightRow{Flight: t.Flight, TicketsAvailable: row.Availability[t.FlightID]}),
		}
	}
	return gin.H{"id": o.ID, "created_at": timeJSON(o.CreatedAt), "tickets": tickets}
}

// orderDetailJSON groups the order's tickets by flight, keeping first-seen order.
func orderDetailJSON(o models.Order) gin.H {
	flights := make([]gin.H, 0)
	index := make(map[uint]int)
	for _, t := range o.Tickets {
		i, ok := index[t.FlightID]
		if !ok {
			f := t.Flight
			i = len(flights)
			index[t.FlightID] = i
			flights = append(flights, gin.H{
				"id":             f.ID,
				"route":          f.Route.SourceDest(),
				"airplane":       f.Airplane.Name,
				"departure_time": timeJSON(f.DepartureTime),
				"arrival_time":   timeJSON(f.ArrivalTime),
				"tickets":        []gin.H{},
			})
		}
		flights[i]["tickets"] = append(flights[i]["tickets"].([]gin.H), gin.H{"row": t.Row, "seat": t.Seat})
	}
	return gin.H{"id": o.ID, "created_at": timeJSON(o.CreatedAt), "flights": flights}
}

func userJSON(u models.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "is_staff": u.IsStaff}
}
