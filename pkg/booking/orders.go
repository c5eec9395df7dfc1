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

// TicketSpec is one requested seat in an order payload.
type TicketSpec struct {
	Row      int
	Seat     int
	FlightID uint
}

// OrderRow is an order whose tickets carry flight availability.
type OrderRow struct {
	Order        models.Order
	Availability map[uint]int
}

type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

// Create books every ticket in specs under one new order owned by userID.
// Either the order and all of its tickets are stored, or nothing is.
func (s *Orders) Create(ctx context.Context, userID uint, specs []TicketSpec) (*models.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "orders.create")
	defer span.End()
	span.SetAttributes(attribute.Int("order.tickets", len(specs)))

	if len(specs) == 0 {
		return nil, domain.Invalid("tickets", "An order must contain at least one ticket.")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		airplanes, err := loadAirplanes(tx, specs)
		if err != nil {
			return err
		}
		if err := validateSpecs(specs, airplanes); err != nil {
			return err
		}

		order = models.Order{UserID: userID, CreatedAt: time.Now().UTC()}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for i, spec := range specs {
			taken, err := seatTaken(tx, spec)
			if err != nil {
				return err
			}
			if taken {
				return domain.ValidationErrors{{
					Field:   ticketField(i, "non_field_errors"),
					Message: fmt.Sprintf("Seat %d in row %d on flight %d is already taken.", spec.Seat, spec.Row, spec.FlightID),
				}}
			}
			// Pre-commit check, run on every ticket write.
			if err := ValidateTicket(spec.Row, spec.Seat, airplanes[spec.FlightID]); err != nil {
				return prefixFields(i, err)
			}
			ticket := models.Ticket{Row: spec.Row, Seat: spec.Seat, FlightID: spec.FlightID, OrderID: order.ID}
			if err := tx.Omit(clause.Associations).Create(&ticket).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return &domain.ConflictError{Resource: "ticket", Err: err}
				}
				return err
			}
			order.Tickets = append(order.Tickets, ticket)
		}
		return nil
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.id", int(order.ID)))
	return &order, nil
}

// List returns one page of the user's orders, newest first.
func (s *Orders) List(ctx context.Context, userID uint, offset, limit int) ([]OrderRow, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := s.withTickets(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	rows := make([]OrderRow, len(orders))
	for i, o := range orders {
		avail, err := s.availability(ctx, o)
		if err != nil {
			return nil, 0, err
		}
		rows[i] = OrderRow{Order: o, Availability: avail}
	}
	return rows, total, nil
}

// Get returns the order only if userID owns it; other users see ErrNotFound.
func (s *Orders) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	var order models.Order
	err := s.withTickets(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Delete removes the order and its tickets.
func (s *Orders) Delete(ctx context.Context, userID, id uint) error {
	ctx, span := telemetry.StartSpan(ctx, "orders.delete")
	defer span.End()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

func (s *Orders) withTickets(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("tickets.id") }).
		Preload("Tickets.Flight.Route.Source").
		Preload("Tickets.Flight.Route.Destination").
		Preload("Tickets.Flight.Airplane")
}

func (s *Orders) availability(ctx context.Context, order models.Order) (map[uint]int, error) {
	seen := make(map[uint]bool)
	var flights []models.Flight
	for _, t := range order.Tickets {
		if !seen[t.FlightID] {
			seen[t.FlightID] = true
			flights = append(flights, t.Flight)
		}
	}
	rows, err := withAvailability(s.db.WithContext(ctx), flights)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, r := range rows {
		out[r.Flight.ID] = r.TicketsAvailable
	}
	return out, nil
}

// loadAirplanes maps each referenced flight id to its airplane.
func loadAirplanes(tx *gorm.DB, specs []TicketSpec) (map[uint]models.Airplane, error) {
	ids := make([]uint, 0, len(specs))
	for _, s := range specs {
		ids = append(ids, s.FlightID)
	}
	var flights []models.Flight
	if err := tx.Preload("Airplane").Where("id IN ?", dedupe(ids)).Find(&flights).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.Airplane, len(flights))
	for _, f := range flights {
		out[f.ID] = f.Airplane
	}
	return out, nil
}

// validateSpecs runs every check that needs no write: the flight exists, the
// seat lies on the grid and no seat is requested twice in one payload.
func validateSpecs(specs []TicketSpec, airplanes map[uint]models.Airplane) error {
	var errs domain.ValidationErrors
	seen := make(map[TicketSpec]int, len(specs))
	for i, spec := range specs {
		airplane, ok := airplanes[spec.FlightID]
		if !ok {
			errs = append(errs, domain.FieldError{
				Field:   ticketField(i, "flight"),
				Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", spec.FlightID),
			})
			continue
		}
		if err := ValidateTicket(spec.Row, spec.Seat, airplane); err != nil {
			errs = append(errs, prefixFields(i, err)...)
			continue
		}
		if first, dup := seen[spec]; dup {
			errs = append(errs, domain.FieldError{
				Field:   ticketField(i, "non_field_errors"),
				Message: fmt.Sprintf("Duplicate of ticket %d: the fields row, seat, flight must make a unique set.", first),
			})
			continue
		}
		seen[spec] = i
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func seatTaken(tx *gorm.DB, spec TicketSpec) (bool, error) {
	var n int64
	err := tx.Model(&models.Ticket{}).
		Where(map[string]interface{}{"flight_id": spec.FlightID, "row": spec.Row, "seat": spec.Seat}).
		Count(&n).Error
	return n > 0, err
}

func ticketField(i int, field string) string {
	return fmt.Sprintf("tickets[%d].%s", i, field)
}

func prefixFields(i int, err error) domain.ValidationErrors {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationErrors{{Field: ticketField(i, "non_field_errors"), Message: err.Error()}}
	}
	out := make(domain.ValidationErrors, len(verrs))
	for j, fe := range verrs {
		out[j] = domain.FieldError{Field: ticketField(i, fe.Field), Message: fe.Message}
	}
	return out
}
