package booking

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"airport_service/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlightFilter(t *testing.T) {
	q := url.Values{
		"source_airport":      {" Airport1 "},
		"destination_city":    {"City2"},
		"airplane":            {"boeing"},
		"crew":                {"3, 1,2"},
		"date_departure":      {"2024-05-02"},
		"date_arrival":        {"2024-05-03"},
		"destination_airport": {""},
	}

	f, err := ParseFlightFilter(q)
	require.NoError(t, err)

	assert.Equal(t, "Airport1", f.SourceAirport)
	assert.Equal(t, "City2", f.DestinationCity)
	assert.Equal(t, "boeing", f.Airplane)
	assert.Empty(t, f.DestinationAirport)
	assert.Equal(t, []uint{3, 1, 2}, f.Crew)
	require.NotNil(t, f.DateDeparture)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), *f.DateDeparture)
	require.NotNil(t, f.DateArrival)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), *f.DateArrival)
}

func TestParseFlightFilterRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		field string
	}{
		{"crew not numeric", url.Values{"crew": {"1,abc"}}, "crew"},
		{"crew trailing comma", url.Values{"crew": {"1,"}}, "crew"},
		{"crew negative", url.Values{"crew": {"-1"}}, "crew"},
		{"departure not a date", url.Values{"date_departure": {"yesterday"}}, "date_departure"},
		{"departure impossible month", url.Values{"date_departure": {"2024-13-01"}}, "date_departure"},
		{"arrival with time", url.Values{"date_arrival": {"2024-05-01T10:00:00Z"}}, "date_arrival"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlightFilter(tt.query)
			require.Error(t, err)
			var verrs domain.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.Fields(), tt.field)
		})
	}
}

func TestFlightFilterQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in, out := f.flightIn.ID, f.flightOut.ID

	tests := []struct {
		name  string
		query url.Values
		want  []uint
	}{
		{"no filters", url.Values{}, []uint{in, out}},
		{"source city", url.Values{"source_city": {"City1"}}, []uint{in}},
		{"source city case-insensitive", url.Values{"source_city": {"cItY1"}}, []uint{in}},
		{"destination city", url.Values{"destination_city": {"City1"}}, []uint{out}},
		{"source airport substring", url.Values{"source_airport": {"port2"}}, []uint{out}},
		{"destination airport", url.Values{"destination_airport": {"Airport2"}}, []uint{in}},
		{"airplane substring", url.Values{"airplane": {"737"}}, []uint{in, out}},
		{"airplane no match", url.Values{"airplane": {"Airbus"}}, []uint{}},
		{"like wildcard is literal", url.Values{"airplane": {"%"}}, []uint{}},
		{"underscore is literal", url.Values{"source_city": {"City_"}}, []uint{}},
		{"crew shared by both", url.Values{"crew": {fmt.Sprint(f.pilot.ID)}}, []uint{in, out}},
		{"crew on one flight", url.Values{"crew": {fmt.Sprint(f.steward.ID)}}, []uint{in}},
		{"crew multi match no duplicates", url.Values{"crew": {fmt.Sprintf("%d,%d", f.pilot.ID, f.steward.ID)}}, []uint{in, out}},
		{"crew unknown id", url.Values{"crew": {"999"}}, []uint{}},
		{"departure on or after date", url.Values{"date_departure": {"2024-05-02"}}, []uint{out}},
		{"departure date ignores time of day", url.Values{"date_departure": {"2024-05-01"}}, []uint{in, out}},
		{"arrival on or after date", url.Values{"date_arrival": {"2024-05-03"}}, []uint{out}},
		{"arrival after everything", url.Values{"date_arrival": {"2024-06-01"}}, []uint{}},
		{"combined filters", url.Values{"source_city": {"City1"}, "crew": {fmt.Sprint(f.pilot.ID)}}, []uint{in}},
		{"combined filters exclude", url.Values{"source_city": {"City1"}, "date_departure": {"2024-05-02"}}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFlightFilter(tt.query)
			require.NoError(t, err)

			rows, total, err := f.flights.List(ctx, filter, 0, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, flightIDs(rows))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestFlightFilterMatchesAccentedNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Model(&f.airport1).Update("closest_big_city", "Évora").Error)

	tests := []struct {
		name  string
		query url.Values
		want  []uint
	}{
		{"exact accented city", url.Values{"source_city": {"Évora"}}, []uint{f.flightIn.ID}},
		{"accented substring", url.Values{"source_city": {"Évo"}}, []uint{f.flightIn.ID}},
		{"ascii tail in other case", url.Values{"destination_city": {"VORA"}}, []uint{f.flightOut.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFlightFilter(tt.query)
			require.NoError(t, err)
			rows, _, err := f.flights.List(ctx, filter, 0, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, flightIDs(rows))
		})
	}
}

func TestParseFlightFilterUsesLastRepeatedValue(t *testing.T) {
	f, err := ParseFlightFilter(url.Values{
		"crew":        {"1", "2,3"},
		"source_city": {"City1", "City2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, f.Crew)
	assert.Equal(t, "City2", f.SourceCity)

	_, err = ParseFlightFilter(url.Values{"crew": {"1", "x"}})
	assert.Error(t, err)
}

func TestFlightListOrderedByDeparture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	early, err := f.flights.Create(ctx, FlightInput{
		RouteID:       f.routeIn.ID,
		AirplaneID:    f.airplane.ID,
		DepartureTime: at(1, 6),
		ArrivalTime:   at(1, 9),
	})
	require.NoError(t, err)

	rows, total, err := f.flights.List(ctx, FlightFilter{}, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{early.ID, f.flightIn.ID, f.flightOut.ID}, flightIDs(rows))
}

func TestFlightListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, total, err := f.flights.List(ctx, FlightFilter{}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint{f.flightIn.ID}, flightIDs(first))

	second, _, err := f.flights.List(ctx, FlightFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.flightOut.ID}, flightIDs(second))
}

func TestFlightListLoadsDisplayFields(t *testing.T) {
	f := newFixture(t)

	rows, _, err := f.flights.List(context.Background(), FlightFilter{SourceCity: "City1"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Airport1 (City1)", row.Flight.Route.Source.NameCity())
	assert.Equal(t, "Airport2 (City2)", row.Flight.Route.Destination.NameCity())
	assert.Equal(t, "Boeing 737", row.Flight.Airplane.Name)
	assert.Equal(t, 60, row.TicketsAvailable)
}
