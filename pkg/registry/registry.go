// Package registry stores the reference data flights are built from:
// airports, routes, the fleet and the crew.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Registry struct {
	db       *gorm.DB
	mediaDir string
}

func New(db *gorm.DB, mediaDir string) *Registry {
	return &Registry{db: db, mediaDir: mediaDir}
}

func (r *Registry) CreateAirport(ctx context.Context, a *models.Airport) error {
	if err := requireText(map[string]string{"name": a.Name, "closest_big_city": a.ClosestBigCity}); err != nil {
		return err
	}
	return r.create(ctx, a, "name", "airport with this name already exists.")
}

func (r *Registry) ListAirports(ctx context.Context) ([]models.Airport, error) {
	var airports []models.Airport
	err := r.db.WithContext(ctx).Order("name ASC").Find(&airports).Error
	return airports, err
}

func (r *Registry) CreateRoute(ctx context.Context, route *models.Route) error {
	var errs domain.ValidationErrors
	if route.Distance <= 0 {
		errs = append(errs, domain.FieldError{Field: "distance", Message: "Ensure this value is greater than or equal to 1."})
	}
	for field, id := range map[string]uint{"source": route.SourceID, "destination": route.DestinationID} {
		ok, err := r.exists(ctx, &models.Airport{}, id)
		if err != nil {
			return err
		}
		if !ok {
			errs = append(errs, missingRef(field, id))
		}
	}
	if len(errs) > 0 {
		return sorted(errs)
	}
	return r.create(ctx, route, "", "")
}

func (r *Registry) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	err := r.db.WithContext(ctx).
		Preload("Source").
		Preload("Destination").
		Order("id ASC").
		Find(&routes).Error
	return routes, err
}

func (r *Registry) CreateManufacturer(ctx context.Context, m *models.AirplaneManufacturer) error {
	if err := requireText(map[string]string{"name": m.Name}); err != nil {
		return err
	}
	return r.create(ctx, m, "name", "airplane manufacturer with this name already exists.")
}

func (r *Registry) ListManufacturers(ctx context.Context) ([]models.AirplaneManufacturer, error) {
	var out []models.AirplaneManufacturer
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// CreateAirplaneType enforces (name, manufacturer) uniqueness itself as well,
// since a unique index does not compare NULL manufacturers.
func (r *Registry) CreateAirplaneType(ctx context.Context, t *models.AirplaneType) error {
	if err := requireText(map[string]string{"name": t.Name}); err != nil {
		return err
	}
	q := r.db.WithContext(ctx).Model(&models.AirplaneType{}).Where("name = ?", t.Name)
	if t.ManufacturerID != nil {
		ok, err := r.exists(ctx, &models.AirplaneManufacturer{}, *t.ManufacturerID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ValidationErrors{missingRef("manufacturer", *t.ManufacturerID)}
		}
		q = q.Where("manufacturer_id = ?", *t.ManufacturerID)
	} else {
		q = q.Where("manufacturer_id IS NULL")
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return domain.Invalid("non_field_errors", "The fields name, manufacturer must make a unique set.")
	}
	return r.create(ctx, t, "non_field_errors", "The fields name, manufacturer must make a unique set.")
}

func (r *Registry) ListAirplaneTypes(ctx context.Context) ([]models.AirplaneType, error) {
	var out []models.AirplaneType
	err := r.db.WithContext(ctx).Preload("Manufacturer").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Registry) CreateAirplane(ctx context.Context, a *models.Airplane) error {
	var errs domain.ValidationErrors
	if a.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "This field may not be blank."})
	}
	if a.Rows <= 0 {
		errs = append(errs, domain.FieldError{Field: "rows", Message: "Ensure this value is greater than or equal to 1."})
	}
	if a.SeatsInRow <= 0 {
		errs = append(errs, domain.FieldError{Field: "seats_in_row", Message: "Ensure this value is greater than or equal to 1."})
	}
	ok, err := r.exists(ctx, &models.AirplaneType{}, a.AirplaneTypeID)
	if err != nil {
		return err
	}
	if !ok {
		errs = append(errs, missingRef("airplane_type", a.AirplaneTypeID))
	}
	if len(errs) > 0 {
		return errs
	}
	return r.create(ctx, a, "", "")
}

func (r *Registry) ListAirplanes(ctx context.Context) ([]models.Airplane, error) {
	var out []models.Airplane
	err := r.db.WithContext(ctx).Preload("AirplaneType.Manufacturer").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Registry) GetAirplane(ctx context.Context, id uint) (*models.Airplane, error) {
	var a models.Airplane
	if err := r.db.WithContext(ctx).Preload("AirplaneType.Manufacturer").First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Registry) CreateCrewPosition(ctx context.Context, p *models.CrewPosition) error {
	if err := requireText(map[string]string{"name": p.Name}); err != nil {
		return err
	}
	return r.create(ctx, p, "name", "crew position with this name already exists.")
}

func (r *Registry) ListCrewPositions(ctx context.Context) ([]models.CrewPosition, error) {
	var out []models.CrewPosition
	err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Registry) CreateCrew(ctx context.Context, c *models.Crew) error {
	if err := requireText(map[string]string{"first_name": c.FirstName, "last_name": c.LastName}); err != nil {
		return err
	}
	ok, err := r.exists(ctx, &models.CrewPosition{}, c.PositionID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationErrors{missingRef("position", c.PositionID)}
	}
	if err := r.create(ctx, c, "non_field_errors", "The fields position, first_name, last_name must make a unique set."); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Position").First(c, c.ID).Error
}

func (r *Registry) ListCrew(ctx context.Context) ([]models.Crew, error) {
	var out []models.Crew
	err := r.db.WithContext(ctx).Preload("Position").Order("id ASC").Find(&out).Error
	return out, err
}

// create inserts a record, reporting a uniqueness violation against field.
func (r *Registry) create(ctx context.Context, value interface{}, field, message string) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && field != "" {
		return domain.Invalid(field, "%s", message)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &domain.ConflictError{Resource: fmt.Sprintf("%T", value), Err: err}
	}
	return err
}

func (r *Registry) exists(ctx context.Context, model interface{}, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func missingRef(field string, id uint) domain.FieldError {
	return domain.FieldError{Field: field, Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)}
}

func requireText(fields map[string]string) error {
	var errs domain.ValidationErrors
	for field, v := range fields {
		if v == "" {
			errs = append(errs, domain.FieldError{Field: field, Message: "This field may not be blank."})
		}
	}
	if len(errs) > 0 {
		return sorted(errs)
	}
	return nil
}

func sorted(errs domain.ValidationErrors) domain.ValidationErrors {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}
