package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// UpdatePolicyRequest запрос на изменение политики бронирования
// Все поля опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	SalonID           int64 `json:"-"`
	UserID            int64 `json:"-"`
	MinAdvanceMinutes *int  `json:"minAdvanceMinutes,omitempty"`
	MaxFutureDays     *int  `json:"maxFutureDays,omitempty"` // 0 = без ограничений
	BufferMinutes     *int  `json:"bufferMinutes,omitempty"`
	SlotStepMinutes   *int  `json:"slotStepMinutes,omitempty"`
	AutoConfirm       *bool `json:"autoConfirm,omitempty"`
}

// Apply применяет переданные поля к политике
func (r *UpdatePolicyRequest) Apply(p *domain.BookingPolicy) {
	if r.MinAdvanceMinutes != nil {
		p.MinAdvanceMinutes = *r.MinAdvanceMinutes
	}
	if r.MaxFutureDays != nil {
		p.MaxFutureDays = *r.MaxFutureDays
	}
	if r.BufferMinutes != nil {
		p.BufferMinutes = *r.BufferMinutes
	}
	if r.SlotStepMinutes != nil {
		p.SlotStepMinutes = *r.SlotStepMinutes
	}
	if r.AutoConfirm != nil {
		p.AutoConfirm = *r.AutoConfirm
	}
}

// Response модели

// PolicyResponse политика бронирования салона
type PolicyResponse struct {
	SalonID           int64      `json:"salonId"`
	MinAdvanceMinutes int        `json:"minAdvanceMinutes"`
	MaxFutureDays     int        `json:"maxFutureDays"`
	BufferMinutes     int        `json:"bufferMinutes"`
	SlotStepMinutes   int        `json:"slotStepMinutes"`
	AutoConfirm       bool       `json:"autoConfirm"`
	IsDefault         bool       `json:"isDefault"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.BookingPolicy) *PolicyResponse {
	if p == nil {
		return nil
	}

	resp := &PolicyResponse{
		SalonID:           p.SalonID,
		MinAdvanceMinutes: p.MinAdvanceMinutes,
		MaxFutureDays:     p.MaxFutureDays,
		BufferMinutes:     p.BufferMinutes,
		SlotStepMinutes:   p.SlotStepMinutes,
		AutoConfirm:       p.AutoConfirm,
		IsDefault:         p.ID == 0,
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
