package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модели

// RuleInput правило на один день недели
type RuleInput struct {
	DayOfWeek int    `json:"dayOfWeek"` // 1 = понедельник ... 7 = воскресенье
	StartTime string `json:"startTime"` // "09:00"
	EndTime   string `json:"endTime"`   // "18:00"
	IsWorking bool   `json:"isWorking"`
}

// SetRulesRequest запрос на перезапись недельных правил мастера
type SetRulesRequest struct {
	SalonID  int64
	MasterID int64
	UserID   int64
	Rules    []RuleInput
}

// CreateOverrideRequest запрос на создание исключения на дату
type CreateOverrideRequest struct {
	SalonID   int64
	MasterID  int64
	UserID    int64
	Date      time.Time
	IsWorking bool
	StartTime *string
	EndTime   *string
	Reason    *string
}

// Response модели

// RuleResponse недельное правило
type RuleResponse struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsWorking bool   `json:"isWorking"`
}

// RulesResponse недельное расписание мастера
type RulesResponse struct {
	MasterID int64          `json:"masterId"`
	Rules    []RuleResponse `json:"rules"`
}

// OverrideResponse исключение на дату
type OverrideResponse struct {
	ID        int64     `json:"id"`
	MasterID  int64     `json:"masterId"`
	Date      string    `json:"date"` // "2025-10-15"
	IsWorking bool      `json:"isWorking"`
	StartTime *string   `json:"startTime,omitempty"`
	EndTime   *string   `json:"endTime,omitempty"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OverrideListResponse список исключений
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// IntervalResponse интервал времени
type IntervalResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WorkingHoursResponse рабочие интервалы мастера на дату
type WorkingHoursResponse struct {
	MasterID  int64              `json:"masterId"`
	Date      string             `json:"date"`
	Timezone  string             `json:"timezone"`
	Intervals []IntervalResponse `json:"intervals"`
}

// Методы конвертации

// FromDomainRules конвертирует правила в DTO
func FromDomainRules(masterID int64, rules []*domain.WeeklyAvailabilityRule) *RulesResponse {
	resp := &RulesResponse{
		MasterID: masterID,
		Rules:    make([]RuleResponse, 0, len(rules)),
	}
	for _, r := range rules {
		resp.Rules = append(resp.Rules, RuleResponse{
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime.String(),
			EndTime:   r.EndTime.String(),
			IsWorking: r.IsWorking,
		})
	}
	return resp
}

// FromDomainOverride конвертирует исключение в DTO
func FromDomainOverride(o *domain.AvailabilityOverride) *OverrideResponse {
	resp := &OverrideResponse{
		ID:        o.ID,
		MasterID:  o.MasterID,
		Date:      o.Date.Format(domain.DateFormat),
		IsWorking: o.IsWorking,
		Reason:    o.Reason,
		CreatedAt: o.CreatedAt,
	}
	if o.StartTime != nil {
		s := o.StartTime.String()
		resp.StartTime = &s
	}
	if o.EndTime != nil {
		e := o.EndTime.String()
		resp.EndTime = &e
	}
	return resp
}

// FromDomainOverrides конвертирует список исключений в DTO
func FromDomainOverrides(overrides []*domain.AvailabilityOverride) *OverrideListResponse {
	resp := &OverrideListResponse{Overrides: make([]OverrideResponse, 0, len(overrides))}
	for _, o := range overrides {
		resp.Overrides = append(resp.Overrides, *FromDomainOverride(o))
	}
	return resp
}

// FromIntervals конвертирует интервалы в DTO
func FromIntervals(masterID int64, date time.Time, tz string, intervals []domain.TimeInterval) *WorkingHoursResponse {
	resp := &WorkingHoursResponse{
		MasterID:  masterID,
		Date:      date.Format(domain.DateFormat),
		Timezone:  tz,
		Intervals: make([]IntervalResponse, 0, len(intervals)),
	}
	for _, iv := range intervals {
		resp.Intervals = append(resp.Intervals, IntervalResponse{Start: iv.Start, End: iv.End})
	}
	return resp
}
