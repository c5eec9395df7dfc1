package booking

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"airport_service/pkg/domain"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// FlightFilter is the parsed set of optional flight search parameters.
// Every non-empty field narrows the result (logical AND).
type FlightFilter struct {
	SourceAirport      string
	DestinationAirport string
	SourceCity         string
	DestinationCity    string
	Airplane           string
	Crew               []uint
	DateDeparture      *time.Time
	DateArrival        *time.Time
}

// ParseFlightFilter reads filters from query parameters. A malformed crew id
// list or date fails the whole query.
func ParseFlightFilter(q url.Values) (FlightFilter, error) {
	f := FlightFilter{
		SourceAirport:      strings.TrimSpace(lastValue(q, "source_airport")),
		DestinationAirport: strings.TrimSpace(lastValue(q, "destination_airport")),
		SourceCity:         strings.TrimSpace(lastValue(q, "source_city")),
		DestinationCity:    strings.TrimSpace(lastValue(q, "destination_city")),
		Airplane:           strings.TrimSpace(lastValue(q, "airplane")),
	}

	var errs domain.ValidationErrors
	if raw := lastValue(q, "crew"); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "crew", Message: "crew must be a comma-separated list of ids"})
		}
		f.Crew = ids
	}
	if raw := lastValue(q, "date_departure"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "date_departure", Message: "date must have format YYYY-MM-DD"})
		} else {
			f.DateDeparture = &d
		}
	}
	if raw := lastValue(q, "date_arrival"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "date_arrival", Message: "date must have format YYYY-MM-DD"})
		} else {
			f.DateArrival = &d
		}
	}
	if len(errs) > 0 {
		return FlightFilter{}, errs
	}
	return f, nil
}

// lastValue returns the last occurrence of a repeated query parameter.
func lastValue(q url.Values, key string) string {
	vs := q[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

func parseIDs(raw string) ([]uint, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// Scope narrows a flights query. Crew membership is matched through a
// subquery so a flight is returned once however many crew ids it matches.
func (f FlightFilter) Scope(db *gorm.DB) *gorm.DB {
	db = db.
		Joins("JOIN routes ON routes.id = flights.route_id").
		Joins("JOIN airports src ON src.id = routes.source_id").
		Joins("JOIN airports dst ON dst.id = routes.destination_id").
		Joins("JOIN airplanes ON airplanes.id = flights.airplane_id")

	if f.SourceAirport != "" {
		db = db.Where("LOWER(src.name) LIKE LOWER(?) ESCAPE '\\'", containsPattern(f.SourceAirport))
	}
	if f.DestinationAirport != "" {
		db = db.Where("LOWER(dst.name) LIKE LOWER(?) ESCAPE '\\'", containsPattern(f.DestinationAirport))
	}
	if f.SourceCity != "" {
		db = db.Where("LOWER(src.closest_big_city) LIKE LOWER(?) ESCAPE '\\'", containsPattern(f.SourceCity))
	}
	if f.DestinationCity != "" {
		db = db.Where("LOWER(dst.closest_big_city) LIKE LOWER(?) ESCAPE '\\'", containsPattern(f.DestinationCity))
	}
	if f.Airplane != "" {
		db = db.Where("LOWER(airplanes.name) LIKE LOWER(?) ESCAPE '\\'", containsPattern(f.Airplane))
	}
	if len(f.Crew) > 0 {
		db = db.Where("flights.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Table("flight_crew").Select("flight_id").Where("crew_id IN ?", f.Crew))
	}
	if f.DateDeparture != nil {
		db = db.Where("flights.departure_time >= ?", *f.DateDeparture)
	}
	if f.DateArrival != nil {
		db = db.Where("flights.arrival_time >= ?", *f.DateArrival)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern leaves case folding to the database so both sides of the
// comparison fold the same way.
func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}
