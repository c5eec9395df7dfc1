package booking

import (
	"context"
	"testing"
	"time"

	"airport_service/pkg/database"
	"airport_service/pkg/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect test database")
	}
	// every connection to :memory: is a separate database
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		panic(err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	flights  *Flights
	orders   *Orders
	airport1 models.Airport
	airport2 models.Airport
	routeIn  models.Route
	routeOut models.Route
	airplane models.Airplane
	pilot    models.Crew
	steward  models.Crew
	// flightIn: Airport1 (City1) -> Airport2 (City2), crew pilot + steward.
	flightIn *models.Flight
	// flightOut: Airport2 (City2) -> Airport1 (City1), crew pilot.
	flightOut *models.Flight
	alice     models.User
	bob       models.User
}

func at(day, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	require.NoError(t, db.Omit(clause.Associations).Create(v).Error)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB()
	f := &fixture{db: db, flights: NewFlights(db), orders: NewOrders(db)}

	f.airport1 = models.Airport{Name: "Airport1", ClosestBigCity: "City1"}
	f.airport2 = models.Airport{Name: "Airport2", ClosestBigCity: "City2"}
	mustCreate(t, db, &f.airport1)
	mustCreate(t, db, &f.airport2)

	f.routeIn = models.Route{SourceID: f.airport1.ID, DestinationID: f.airport2.ID, Distance: 500}
	f.routeOut = models.Route{SourceID: f.airport2.ID, DestinationID: f.airport1.ID, Distance: 500}
	mustCreate(t, db, &f.routeIn)
	mustCreate(t, db, &f.routeOut)

	maker := models.AirplaneManufacturer{Name: "Boeing"}
	mustCreate(t, db, &maker)
	airplaneType := models.AirplaneType{Name: "Narrow body", ManufacturerID: &maker.ID}
	mustCreate(t, db, &airplaneType)
	f.airplane = models.Airplane{Name: "Boeing 737", Rows: 10, SeatsInRow: 6, AirplaneTypeID: airplaneType.ID}
	mustCreate(t, db, &f.airplane)

	pilotPos := models.CrewPosition{Name: "Pilot"}
	stewardPos := models.CrewPosition{Name: "Steward"}
	mustCreate(t, db, &pilotPos)
	mustCreate(t, db, &stewardPos)
	f.pilot = models.Crew{FirstName: "John", LastName: "Doe", PositionID: pilotPos.ID}
	f.steward = models.Crew{FirstName: "Jane", LastName: "Roe", PositionID: stewardPos.ID}
	mustCreate(t, db, &f.pilot)
	mustCreate(t, db, &f.steward)

	f.alice = models.User{Email: "alice@example.com", PasswordHash: "x"}
	f.bob = models.User{Email: "bob@example.com", PasswordHash: "x"}
	mustCreate(t, db, &f.alice)
	mustCreate(t, db, &f.bob)

	ctx := context.Background()
	var err error
	f.flightIn, err = f.flights.Create(ctx, FlightInput{
		RouteID:       f.routeIn.ID,
		AirplaneID:    f.airplane.ID,
		DepartureTime: at(1, 10),
		ArrivalTime:   at(1, 14),
		CrewIDs:       []uint{f.pilot.ID, f.steward.ID},
	})
	require.NoError(t, err)
	f.flightOut, err = f.flights.Create(ctx, FlightInput{
		RouteID:       f.routeOut.ID,
		AirplaneID:    f.airplane.ID,
		DepartureTime: at(3, 8),
		ArrivalTime:   at(3, 12),
		CrewIDs:       []uint{f.pilot.ID},
	})
	require.NoError(t, err)
	return f
}

func flightIDs(rows []FlightRow) []uint {
	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.Flight.ID
	}
	return ids
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
