package booking

import (
	"fmt"
	"time"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"
)

// ValidateTicket checks a seat against the airplane grid. Valid rows are
// 1..rows-1 and valid seats 1..seats_in_row-1: the upper bound is exclusive,
// so the last physical row and seat are never bookable.
func ValidateTicket(row, seat int, airplane models.Airplane) error {
	var errs domain.ValidationErrors
	if fe := checkRange(row, 1, airplane.Rows, "row", "rows"); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := checkRange(seat, 1, airplane.SeatsInRow, "seat", "seats_in_row"); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkRange requires lower <= value < upper.
func checkRange(value, lower, upper int, field, limitName string) *domain.FieldError {
	if value >= lower && value < upper {
		return nil
	}
	return &domain.FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s number must be in available range: (%d, %s): (%d, %d)", field, lower, limitName, lower, upper),
	}
}

// ValidateFlightTimes requires departure strictly before arrival.
func ValidateFlightTimes(departure, arrival time.Time) error {
	if !departure.Before(arrival) {
		return domain.Invalid("arrival_time", "Arrival time must be later than departure time.")
	}
	return nil
}

// ValidateFlight is the pre-commit check run before every flight insert or update.
func ValidateFlight(f *models.Flight) error {
	return ValidateFlightTimes(f.DepartureTime, f.ArrivalTime)
}
