package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// CreateTimeBlockRequest запрос на создание блока времени
type CreateTimeBlockRequest struct {
	SalonID   int64
	MasterID  int64
	UserID    int64
	Type      string
	Title     *string
	StartTime time.Time
	EndTime   time.Time
	Recurring bool
	DayOfWeek *int
}

// Response модели

// TimeBlockResponse блок времени
type TimeBlockResponse struct {
	ID        int64     `json:"id"`
	MasterID  int64     `json:"masterId"`
	Type      string    `json:"type"`
	Title     *string   `json:"title,omitempty"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Recurring bool      `json:"recurring"`
	DayOfWeek *int      `json:"dayOfWeek,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TimeBlockListResponse список блоков
type TimeBlockListResponse struct {
	TimeBlocks []TimeBlockResponse `json:"timeBlocks"`
}

// FromDomainTimeBlock конвертирует domain модель в DTO
func FromDomainTimeBlock(b *domain.TimeBlock) *TimeBlockResponse {
	return &TimeBlockResponse{
		ID:        b.ID,
		MasterID:  b.MasterID,
		Type:      string(b.Type),
		Title:     b.Title,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Recurring: b.Recurring,
		DayOfWeek: b.DayOfWeek,
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainTimeBlocks конвертирует список блоков в DTO
func FromDomainTimeBlocks(blocks []*domain.TimeBlock) *TimeBlockListResponse {
	resp := &TimeBlockListResponse{TimeBlocks: make([]TimeBlockResponse, 0, len(blocks))}
	for _, b := range blocks {
		resp.TimeBlocks = append(resp.TimeBlocks, *FromDomainTimeBlock(b))
	}
	return resp
}
