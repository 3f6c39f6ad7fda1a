package types

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeString
		wantErr bool
	}{
		{"09:00", "09:00", false},
		{"23:59", "23:59", false},
		{"18:30:00", "18:30", false},
		{"24:00", "", true},
		{"9:00", "", true},
		{"09:60", "", true},
		{"abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("17:30")

	next, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("18:00"), next)

	_, err = ts.AddMinutes(7 * 60)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.True(t, TimeString("10:00").IsAfter("09:59"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("").IsZero())
	assert.Equal(t, 9*60+15, TimeString("09:15").Minutes())
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	date := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	got := TimeString("09:00").On(date, loc)

	assert.Equal(t, time.Date(2025, 10, 13, 6, 0, 0, 0, time.UTC), got.UTC())
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("08:45:00")))
	assert.Equal(t, TimeString("08:45"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 12, 5, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("12:05"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}
