package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxRangeDays int) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.MasterID != nil && *req.MasterID <= 0 {
		return fmt.Errorf("%w: masterId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.DateTo != nil {
		days := daysBetween(req.Date, *req.DateTo)
		if days < 0 {
			return fmt.Errorf("%w: dateTo must not be before date", ErrInvalidInput)
		}
		if maxRangeDays > 0 && days >= maxRangeDays {
			return fmt.Errorf("%w: date range must not exceed %d days", ErrInvalidInput, maxRangeDays)
		}
	}

	return nil
}

// calendarDays календарные даты запроса в часовом поясе салона
func calendarDays(req *Request, loc *time.Location) []time.Time {
	first := onDate(req.Date, loc)
	count := 1
	if req.DateTo != nil {
		count = daysBetween(req.Date, *req.DateTo) + 1
	}

	days := make([]time.Time, count)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// daysBetween количество календарных дней от from до to
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// onDate полночь календарной даты date в часовом поясе loc
func onDate(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// dayInterval сутки календарной даты в часовом поясе loc
func dayInterval(day time.Time) domain.TimeInterval {
	return domain.TimeInterval{Start: day, End: day.AddDate(0, 0, 1)}
}
