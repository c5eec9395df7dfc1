package booking

import (
	"testing"
	"time"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTicket(t *testing.T) {
	airplane := models.Airplane{Rows: 10, SeatsInRow: 6}

	tests := []struct {
		name       string
		row, seat  int
		wantFields []string
	}{
		{"first seat", 1, 1, nil},
		{"inner seat", 5, 3, nil},
		{"last bookable row and seat", 9, 5, nil},
		{"row zero", 0, 3, []string{"row"}},
		{"row equals rows", 10, 3, []string{"row"}},
		{"row negative", -1, 3, []string{"row"}},
		{"seat zero", 5, 0, []string{"seat"}},
		{"seat equals seats_in_row", 5, 6, []string{"seat"}},
		{"both out of range", 10, 6, []string{"row", "seat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTicket(tt.row, tt.seat, airplane)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var verrs domain.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var fields []string
			for _, fe := range verrs {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateTicketMessage(t *testing.T) {
	err := ValidateTicket(10, 1, models.Airplane{Rows: 10, SeatsInRow: 6})

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "row number must be in available range: (1, rows): (1, 10)", verrs[0].Message)
}

func TestValidateFlightTimes(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		departure time.Time
		arrival   time.Time
		wantErr   bool
	}{
		{"departure before arrival", base, base.Add(time.Hour), false},
		{"one nanosecond apart", base, base.Add(time.Nanosecond), false},
		{"equal times", base, base, true},
		{"arrival before departure", base, base.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlightTimes(tt.departure, tt.arrival)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, domain.IsValidationError(err))
			assert.Contains(t, err.(domain.ValidationErrors).Fields(), "arrival_time")
		})
	}
}

func TestValidateFlight(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateFlight(&models.Flight{DepartureTime: base, ArrivalTime: base.Add(time.Hour)}))
	assert.Error(t, ValidateFlight(&models.Flight{DepartureTime: base, ArrivalTime: base}))
}
