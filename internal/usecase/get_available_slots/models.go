package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	SalonID   int64      // ID салона
	ServiceID int64      // ID услуги
	MasterID  *int64     // nil - все мастера, оказывающие услугу
	Date      time.Time  // первая дата (календарная дата салона)
	DateTo    *time.Time // последняя дата включительно (опционально)
}

// Response модель ответа со свободными слотами по дням
type Response struct {
	SalonID         int64
	ServiceID       int64
	MasterID        *int64
	DurationMinutes int
	Days            []DaySlots
}

// DaySlots слоты одного дня, отсортированные по началу и мастеру
type DaySlots struct {
	Date  time.Time
	Slots []domain.CandidateSlot
}
