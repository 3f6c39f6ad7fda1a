package occupancy

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Query параметры расчёта занятости мастера
type Query struct {
	SalonID  int64
	MasterID int64
	Range    domain.TimeInterval
	// SalonBufferMinutes буфер из политики салона; буфер услуги хранится в каждой записи
	SalonBufferMinutes int
	Location           *time.Location
	// ExcludeAppointmentID запись, которая не учитывается (перенос самой себя)
	ExcludeAppointmentID *int64
}

// Aggregator собирает интервалы, недоступные для новых записей:
// активные записи с буферами и блоки времени (без буферов)
// Время вне рабочих часов здесь не учитывается, его отсекает пересечение с расписанием
type Aggregator struct {
	appointments AppointmentRepository
	timeBlocks   TimeBlockRepository
}

// NewAggregator создает новый экземпляр агрегатора занятости
func NewAggregator(appointments AppointmentRepository, timeBlocks TimeBlockRepository) *Aggregator {
	return &Aggregator{
		appointments: appointments,
		timeBlocks:   timeBlocks,
	}
}

// OccupiedIntervals возвращает отсортированный список непересекающихся занятых интервалов,
// пересекающих q.Range
// Внутри транзакции записи читаются с блокировкой
func (a *Aggregator) OccupiedIntervals(ctx context.Context, q Query) ([]domain.TimeInterval, error) {
	if err := q.Range.Validate(); err != nil {
		return nil, err
	}

	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	// Запись вне диапазона может задеть его своим буфером; оба буфера не больше MaxBufferMinutes
	margin := time.Duration(2*domain.MaxBufferMinutes) * time.Minute
	appointments, err := a.appointments.GetOccupying(ctx, domain.OccupancyFilter{
		SalonID:              q.SalonID,
		MasterID:             q.MasterID,
		From:                 q.Range.Start.Add(-margin),
		To:                   q.Range.End.Add(margin),
		ExcludeAppointmentID: q.ExcludeAppointmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: OccupiedIntervals - get appointments: %v", ErrInternal, err)
	}

	blocks, err := a.timeBlocks.GetForMaster(ctx, q.SalonID, q.MasterID, q.Range)
	if err != nil {
		return nil, fmt.Errorf("%w: OccupiedIntervals - get time blocks: %v", ErrInternal, err)
	}

	occupied := make([]domain.TimeInterval, 0, len(appointments)+len(blocks))

	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}
		buffered := appt.BufferedInterval(q.SalonBufferMinutes)
		if domain.Overlaps(buffered, q.Range) {
			occupied = append(occupied, buffered)
		}
	}

	for _, block := range blocks {
		occupied = append(occupied, block.OccurrencesIn(q.Range, loc)...)
	}

	return domain.MergeOverlapping(occupied)
}
