package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
)

// SlotResponse свободный слот
type SlotResponse struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	MasterID  int64     `json:"masterId"`
}

// DayResponse слоты одного дня
type DayResponse struct {
	Date  string         `json:"date"` // "2025-10-15"
	Slots []SlotResponse `json:"slots"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	SalonID         int64         `json:"salonId"`
	ServiceID       int64         `json:"serviceId"`
	MasterID        *int64        `json:"masterId,omitempty"`
	DurationMinutes int           `json:"durationMinutes"`
	Days            []DayResponse `json:"days"`
}

// ToUseCaseRequest конвертирует параметры запроса в модель use case
func ToUseCaseRequest(salonID, serviceID int64, masterID *int64, date time.Time, dateTo *time.Time) *getAvailableSlots.Request {
	return &getAvailableSlots.Request{
		SalonID:   salonID,
		ServiceID: serviceID,
		MasterID:  masterID,
		Date:      date,
		DateTo:    dateTo,
	}
}

// FromDaySlots конвертирует слоты дня в HTTP модель
func FromDaySlots(day getAvailableSlots.DaySlots) DayResponse {
	slots := make([]SlotResponse, len(day.Slots))
	for i, s := range day.Slots {
		slots[i] = SlotResponse{StartTime: s.StartTime, EndTime: s.EndTime, MasterID: s.MasterID}
	}
	return DayResponse{Date: day.Date.Format(domain.DateFormat), Slots: slots}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	days := make([]DayResponse, len(resp.Days))
	for i, d := range resp.Days {
		days[i] = FromDaySlots(d)
	}
	return &AvailableSlotsResponse{
		SalonID:         resp.SalonID,
		ServiceID:       resp.ServiceID,
		MasterID:        resp.MasterID,
		DurationMinutes: resp.DurationMinutes,
		Days:            days,
	}
}
