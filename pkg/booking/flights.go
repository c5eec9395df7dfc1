package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"
	"airport_service/pkg/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlightInput is the writable part of a flight.
type FlightInput struct {
	RouteID       uint
	AirplaneID    uint
	DepartureTime time.Time
	ArrivalTime   time.Time
	CrewIDs       []uint
}

// FlightRow is a flight with its derived seat availability.
type FlightRow struct {
	Flight           models.Flight
	TicketsAvailable int
}

type Flights struct {
	db *gorm.DB
}

func NewFlights(db *gorm.DB) *Flights {
	return &Flights{db: db}
}

func (s *Flights) Create(ctx context.Context, in FlightInput) (*models.Flight, error) {
	ctx, span := telemetry.StartSpan(ctx, "flights.create")
	defer span.End()

	var flight models.Flight
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		crew, err := resolveFlightRefs(tx, in)
		if err != nil {
			return err
		}
		flight = models.Flight{
			RouteID:       in.RouteID,
			AirplaneID:    in.AirplaneID,
			DepartureTime: in.DepartureTime.UTC(),
			ArrivalTime:   in.ArrivalTime.UTC(),
		}
		if err := ValidateFlight(&flight); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&flight).Error; err != nil {
			return err
		}
		return replaceCrew(tx, flight.ID, crew)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("flight.id", int(flight.ID)))
	return s.Get(ctx, flight.ID)
}

// Update rewrites every writable field. The full record is re-validated so a
// change that inverts the time window is rejected even when only one bound moves.
func (s *Flights) Update(ctx context.Context, id uint, in FlightInput) (*models.Flight, error) {
	ctx, span := telemetry.StartSpan(ctx, "flights.update")
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight models.Flight
		if err := tx.First(&flight, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		crew, err := resolveFlightRefs(tx, in)
		if err != nil {
			return err
		}
		flight.RouteID = in.RouteID
		flight.AirplaneID = in.AirplaneID
		flight.DepartureTime = in.DepartureTime.UTC()
		flight.ArrivalTime = in.ArrivalTime.UTC()
		if err := ValidateFlight(&flight); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&flight).Error; err != nil {
			return err
		}
		return replaceCrew(tx, flight.ID, crew)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get loads a flight with everything the detail view renders.
func (s *Flights) Get(ctx context.Context, id uint) (*models.Flight, error) {
	var flight models.Flight
	err := s.db.WithContext(ctx).
		Preload("Route.Source").
		Preload("Route.Destination").
		Preload("Airplane.AirplaneType.Manufacturer").
		Preload("Crew", func(db *gorm.DB) *gorm.DB { return db.Order("crews.id") }).
		Preload("Crew.Position").
		First(&flight, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &flight, nil
}

// List returns one page of flights matching f, ordered by departure time,
// together with the total number of matches.
func (s *Flights) List(ctx context.Context, f FlightFilter, offset, limit int) ([]FlightRow, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "flights.list")
	defer span.End()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Flight{}).Scopes(f.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var flights []models.Flight
	err := s.db.WithContext(ctx).
		Model(&models.Flight{}).
		Scopes(f.Scope).
		Select("flights.*").
		Preload("Route.Source").
		Preload("Route.Destination").
		Preload("Airplane").
		Order("flights.departure_time ASC, flights.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&flights).Error
	if err != nil {
		return nil, 0, err
	}

	rows, err := withAvailability(s.db.WithContext(ctx), flights)
	if err != nil {
		return nil, 0, err
	}
	span.SetAttributes(attribute.Int64("flights.total", total))
	return rows, total, nil
}

// TicketsAvailable is capacity minus sold tickets. Airplane must be loaded.
func (s *Flights) TicketsAvailable(ctx context.Context, flight *models.Flight) (int, error) {
	rows, err := withAvailability(s.db.WithContext(ctx), []models.Flight{*flight})
	if err != nil {
		return 0, err
	}
	return rows[0].TicketsAvailable, nil
}

// TakenPlaces lists the seats sold on a flight.
func (s *Flights) TakenPlaces(ctx context.Context, flightID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "row"}},
			{Column: clause.Column{Name: "seat"}},
		}}).
		Find(&tickets).Error
	return tickets, err
}

// withAvailability counts sold tickets for all flights in one grouped query.
func withAvailability(db *gorm.DB, flights []models.Flight) ([]FlightRow, error) {
	rows := make([]FlightRow, len(flights))
	if len(flights) == 0 {
		return rows, nil
	}
	ids := make([]uint, len(flights))
	for i, f := range flights {
		ids[i] = f.ID
	}

	var counts []struct {
		FlightID uint
		Sold     int
	}
	err := db.Model(&models.Ticket{}).
		Select("flight_id, COUNT(*) AS sold").
		Where("flight_id IN ?", ids).
		Group("flight_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	sold := make(map[uint]int, len(counts))
	for _, c := range counts {
		sold[c.FlightID] = c.Sold
	}

	for i, f := range flights {
		rows[i] = FlightRow{Flight: f, TicketsAvailable: f.Airplane.Capacity() - sold[f.ID]}
	}
	return rows, nil
}

// resolveFlightRefs checks that the route, airplane and every crew member
// exist, reporting each missing reference against its field.
func resolveFlightRefs(tx *gorm.DB, in FlightInput) ([]uint, error) {
	var errs domain.ValidationErrors

	var n int64
	if err := tx.Model(&models.Route{}).Where("id = ?", in.RouteID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		errs = append(errs, domain.FieldError{Field: "route", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.RouteID)})
	}
	if err := tx.Model(&models.Airplane{}).Where("id = ?", in.AirplaneID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		errs = append(errs, domain.FieldError{Field: "airplane", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.AirplaneID)})
	}

	crew := dedupe(in.CrewIDs)
	if len(crew) > 0 {
		var found []uint
		if err := tx.Model(&models.Crew{}).Where("id IN ?", crew).Pluck("id", &found).Error; err != nil {
			return nil, err
		}
		known := make(map[uint]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range crew {
			if !known[id] {
				errs = append(errs, domain.FieldError{Field: "crew", Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)})
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return crew, nil
}

func replaceCrew(tx *gorm.DB, flightID uint, crew []uint) error {
	if err := tx.Exec("DELETE FROM flight_crew WHERE flight_id = ?", flightID).Error; err != nil {
		return err
	}
	for _, id := range crew {
		if err := tx.Exec("INSERT INTO flight_crew (flight_id, crew_id) VALUES (?, ?)", flightID, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
