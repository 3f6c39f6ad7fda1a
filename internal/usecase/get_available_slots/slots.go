package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// grid параметры раскладки слотов
type grid struct {
	Duration time.Duration // длительность услуги
	Buffer   time.Duration // буфер салона + буфер услуги, с каждой стороны
	Step     time.Duration // шаг сетки от начала рабочего интервала
}

// generateMasterSlots раскладывает слоты мастера по свободному времени дня
// Слот [t, t+duration) выдаётся, если он вместе со своим буфером, обрезанным рабочим интервалом,
// целиком лежит в свободном интервале. Сетка привязана к началу рабочего интервала.
// Чистая функция: одинаковые входные данные дают одинаковый результат
func generateMasterSlots(masterID int64, working, occupied []domain.TimeInterval, g grid) ([]domain.CandidateSlot, error) {
	slots := make([]domain.CandidateSlot, 0)

	for _, w := range working {
		free, err := domain.Subtract(w, occupied)
		if err != nil {
			return nil, err
		}

		for _, f := range free {
			for t := alignUp(f.Start, w.Start, g.Step); !t.Add(g.Duration).After(f.End); t = t.Add(g.Step) {
				candidate := domain.TimeInterval{Start: t, End: t.Add(g.Duration)}
				if !f.Contains(domain.BufferedWithin(candidate, w, g.Buffer)) {
					continue
				}
				slots = append(slots, domain.CandidateSlot{
					StartTime: candidate.Start,
					EndTime:   candidate.End,
					MasterID:  masterID,
				})
			}
		}
	}

	return slots, nil
}

// alignUp первый шаг сетки anchor + n*step, не раньше t
func alignUp(t, anchor time.Time, step time.Duration) time.Time {
	if !t.After(anchor) {
		return anchor
	}
	n := (t.Sub(anchor) + step - 1) / step
	return anchor.Add(n * step)
}

// applyWindow отбрасывает слоты вне окна записи политики (минимальный срок, горизонт)
func applyWindow(slots []domain.CandidateSlot, policy *domain.BookingPolicy, now time.Time, loc *time.Location) []domain.CandidateSlot {
	result := make([]domain.CandidateSlot, 0, len(slots))
	for _, s := range slots {
		if policy.AllowsStart(s.StartTime, now, loc) {
			result = append(result, s)
		}
	}
	return result
}

// dayOutsideWindow сутки целиком раньше минимального срока или за горизонтом
func dayOutsideWindow(day domain.TimeInterval, policy *domain.BookingPolicy, now time.Time, loc *time.Location) bool {
	if !day.End.After(policy.EarliestStart(now)) {
		return true
	}
	if horizon, ok := policy.HorizonEnd(now, loc); ok && !day.Start.Before(horizon) {
		return true
	}
	return false
}

// span наименьший интервал, покрывающий все рабочие интервалы
func span(intervals []domain.TimeInterval) domain.TimeInterval {
	result := intervals[0]
	for _, iv := range intervals[1:] {
		if iv.Start.Before(result.Start) {
			result.Start = iv.Start
		}
		if iv.End.After(result.End) {
			result.End = iv.End
		}
	}
	return result
}
