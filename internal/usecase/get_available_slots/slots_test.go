package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// monday 2025-10-13, UTC
var monday = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func starts(slots []domain.CandidateSlot) []string {
	result := make([]string, len(slots))
	for i, s := range slots {
		result[i] = s.StartTime.Format("15:04")
	}
	return result
}

func TestGenerateMasterSlots_BufferedAppointment(t *testing.T) {
	working := []domain.TimeInterval{{Start: at(9, 0), End: at(18, 0)}}
	// запись 10:00-10:30 с буфером 10 минут
	occupied := []domain.TimeInterval{{Start: at(9, 50), End: at(10, 40)}}
	g := grid{Duration: 30 * time.Minute, Step: 15 * time.Minute}

	slots, err := generateMasterSlots(7, working, occupied, g)
	require.NoError(t, err)

	got := starts(slots)
	assert.Equal(t, []string{"09:00", "09:15"}, got[:2])
	assert.Equal(t, "10:45", got[2])
	assert.Equal(t, "17:30", got[len(got)-1])
	assert.NotContains(t, got, "09:30")
	assert.NotContains(t, got, "09:45")
	assert.NotContains(t, got, "10:30")

	// 09:00, 09:15 и 10:45..17:30 с шагом 15 минут
	assert.Len(t, slots, 2+28)
	for _, s := range slots {
		assert.Equal(t, int64(7), s.MasterID)
		assert.Equal(t, 30*time.Minute, s.EndTime.Sub(s.StartTime))
	}
}

func TestGenerateMasterSlots_CandidateBuffer(t *testing.T) {
	working := []domain.TimeInterval{{Start: at(9, 0), End: at(12, 0)}}
	occupied := []domain.TimeInterval{{Start: at(10, 0), End: at(10, 30)}}
	g := grid{Duration: 30 * time.Minute, Buffer: 15 * time.Minute, Step: 15 * time.Minute}

	slots, err := generateMasterSlots(1, working, occupied, g)
	require.NoError(t, err)

	// буфер обрезается началом и концом рабочего дня
	assert.Equal(t, []string{"09:00", "09:15", "10:45", "11:00", "11:15", "11:30"}, starts(slots))
}

func TestGenerateMasterSlots_Properties(t *testing.T) {
	working := []domain.TimeInterval{{Start: at(9, 0), End: at(18, 0)}}
	occupied := []domain.TimeInterval{
		{Start: at(9, 50), End: at(10, 40)},
		{Start: at(13, 0), End: at(14, 0)},
		{Start: at(16, 5), End: at(16, 20)},
	}
	g := grid{Duration: 45 * time.Minute, Buffer: 5 * time.Minute, Step: 15 * time.Minute}

	first, err := generateMasterSlots(3, working, occupied, g)
	require.NoError(t, err)
	second, err := generateMasterSlots(3, working, occupied, g)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, s := range first {
		iv := s.Interval()
		assert.True(t, working[0].Contains(iv), iv.String())
		for _, o := range occupied {
			assert.False(t, iv.Overlaps(o), "%s overlaps %s", iv, o)
		}
		assert.Zero(t, s.StartTime.Sub(working[0].Start)%g.Step, iv.String())
	}
}

func TestGenerateMasterSlots_NoRoom(t *testing.T) {
	working := []domain.TimeInterval{{Start: at(9, 0), End: at(9, 20)}}
	g := grid{Duration: 30 * time.Minute, Step: 15 * time.Minute}

	slots, err := generateMasterSlots(1, working, nil, g)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAlignUp(t *testing.T) {
	anchor := at(9, 0)
	step := 15 * time.Minute

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"before anchor", at(8, 30), at(9, 0)},
		{"on anchor", at(9, 0), at(9, 0)},
		{"on grid", at(10, 45), at(10, 45)},
		{"between steps", at(10, 40), at(10, 45)},
		{"just after step", at(10, 46), at(11, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(alignUp(tt.in, anchor, step)), alignUp(tt.in, anchor, step))
		})
	}
}

func TestApplyWindow_MinAdvanceBoundary(t *testing.T) {
	policy := &domain.BookingPolicy{MinAdvanceMinutes: 60, MaxFutureDays: 30}
	slots := []domain.CandidateSlot{
		{StartTime: at(10, 59), EndTime: at(11, 29), MasterID: 1},
		{StartTime: at(11, 0), EndTime: at(11, 30), MasterID: 1},
	}
	now := at(10, 0)

	// 59 минут до начала - нельзя, ровно 60 - можно
	got := applyWindow(slots, policy, now, time.UTC)
	require.Len(t, got, 1)
	assert.True(t, at(11, 0).Equal(got[0].StartTime))
}

func TestApplyWindow_Horizon(t *testing.T) {
	policy := &domain.BookingPolicy{MaxFutureDays: 1}
	now := at(12, 0)
	slots := []domain.CandidateSlot{
		{StartTime: monday.AddDate(0, 0, 1).Add(23 * time.Hour), MasterID: 1},
		{StartTime: monday.AddDate(0, 0, 2), MasterID: 1},
	}

	got := applyWindow(slots, policy, now, time.UTC)
	require.Len(t, got, 1)
	assert.True(t, slots[0].StartTime.Equal(got[0].StartTime))
}

func TestDayOutsideWindow(t *testing.T) {
	policy := &domain.BookingPolicy{MinAdvanceMinutes: 60, MaxFutureDays: 2}
	now := at(23, 30)

	assert.True(t, dayOutsideWindow(dayInterval(monday.AddDate(0, 0, -1)), policy, now, time.UTC))
	// сегодня целиком раньше now+60m
	assert.True(t, dayOutsideWindow(dayInterval(monday), policy, now, time.UTC))
	assert.False(t, dayOutsideWindow(dayInterval(monday.AddDate(0, 0, 1)), policy, now, time.UTC))
	assert.False(t, dayOutsideWindow(dayInterval(monday.AddDate(0, 0, 2)), policy, now, time.UTC))
	assert.True(t, dayOutsideWindow(dayInterval(monday.AddDate(0, 0, 3)), policy, now, time.UTC))
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"single day", Request{SalonID: 1, ServiceID: 1, Date: monday}, false},
		{"range at limit", Request{SalonID: 1, ServiceID: 1, Date: monday, DateTo: ptrTime(monday.AddDate(0, 0, 13))}, false},
		{"range too long", Request{SalonID: 1, ServiceID: 1, Date: monday, DateTo: ptrTime(monday.AddDate(0, 0, 14))}, true},
		{"reversed range", Request{SalonID: 1, ServiceID: 1, Date: monday, DateTo: ptrTime(monday.AddDate(0, 0, -1))}, true},
		{"no date", Request{SalonID: 1, ServiceID: 1}, true},
		{"bad salon", Request{ServiceID: 1, Date: monday}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(&tt.req, 14)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
