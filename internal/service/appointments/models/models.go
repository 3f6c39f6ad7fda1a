package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// ListAppointmentsRequest запрос на получение записей салона
type ListAppointmentsRequest struct {
	SalonID         int64
	UserID          int64
	MasterID        *int64     // фильтр по мастеру (опционально)
	ClientID        *int64     // фильтр по клиенту (опционально)
	From            *time.Time // начало периода (опционально)
	To              *time.Time // конец периода (опционально)
	Status          *string    // фильтр по статусу (опционально)
	IncludeInactive bool       // включить отменённые и неявки
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		SalonID:         r.SalonID,
		MasterID:        r.MasterID,
		ClientID:        r.ClientID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return filter, fmt.Errorf("from must be before to")
	}

	if r.Status != nil {
		status, err := domain.ParseAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	SalonID         int64     `json:"salonId"`
	ClientID        int64     `json:"clientId"`
	MasterID        int64     `json:"masterId"`
	ServiceID       int64     `json:"serviceId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Source          string    `json:"source"`

	// Денормализованные данные
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Notes       *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// HistoryEntryResponse запись журнала изменений
type HistoryEntryResponse struct {
	Action       string     `json:"action"`
	OldStatus    *string    `json:"oldStatus,omitempty"`
	NewStatus    *string    `json:"newStatus,omitempty"`
	OldStartTime *time.Time `json:"oldStartTime,omitempty"`
	NewStartTime *time.Time `json:"newStartTime,omitempty"`
	OldMasterID  *int64     `json:"oldMasterId,omitempty"`
	NewMasterID  *int64     `json:"newMasterId,omitempty"`
	ChangedBy    int64      `json:"changedBy"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HistoryResponse журнал изменений записи
type HistoryResponse struct {
	AppointmentID int64                  `json:"appointmentId"`
	History       []HistoryEntryResponse `json:"history"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		SalonID:            a.SalonID,
		ClientID:           a.ClientID,
		MasterID:           a.MasterID,
		ServiceID:          a.ServiceID,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		Source:             string(a.Source),
		ServiceName:        a.ServiceName,
		Price:              a.Price,
		Currency:           a.Currency,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelled := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelled
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}
	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}

// FromDomainHistory конвертирует журнал изменений в DTO
func FromDomainHistory(appointmentID int64, history []*domain.AppointmentHistory) *HistoryResponse {
	resp := &HistoryResponse{
		AppointmentID: appointmentID,
		History:       make([]HistoryEntryResponse, 0, len(history)),
	}
	for _, h := range history {
		resp.History = append(resp.History, HistoryEntryResponse{
			Action:       string(h.Action),
			OldStatus:    statusPtr(h.OldStatus),
			NewStatus:    statusPtr(h.NewStatus),
			OldStartTime: h.OldStartTime,
			NewStartTime: h.NewStartTime,
			OldMasterID:  h.OldMasterID,
			NewMasterID:  h.NewMasterID,
			ChangedBy:    h.ChangedBy,
			Notes:        h.Notes,
			CreatedAt:    h.CreatedAt,
		})
	}
	return resp
}

func statusPtr(s *domain.AppointmentStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
