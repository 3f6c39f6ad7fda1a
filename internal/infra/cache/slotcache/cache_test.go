package slotcache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

// memRedis хранилище в памяти с семантикой нужных команд
type memRedis struct {
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}}
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func TestCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	rdb := newMemRedis()
	cache := New(rdb, time.Minute)

	date := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	key := Key{SalonID: 1, ServiceID: 10, MasterID: ptr.Ptr(int64(3)), Date: date}
	slots := []domain.CandidateSlot{
		{StartTime: date.Add(9 * time.Hour), EndTime: date.Add(9*time.Hour + 30*time.Minute), MasterID: 3},
	}

	miss, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, miss.Hit)
	assert.Equal(t, "0.0", miss.Version)

	require.NoError(t, cache.Set(ctx, key, miss.Version, slots))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, got.Hit)
	require.Len(t, got.Slots, 1)
	assert.True(t, slots[0].StartTime.Equal(got.Slots[0].StartTime))
	assert.Equal(t, int64(3), got.Slots[0].MasterID)

	// другой салон/дата не затрагиваются
	require.NoError(t, cache.Invalidate(ctx, 2, date))
	got, _ = cache.Get(ctx, key)
	assert.True(t, got.Hit)

	require.NoError(t, cache.Invalidate(ctx, 1, date))
	got, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestCache_SetAfterInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	cache := New(newMemRedis(), time.Minute)

	date := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	key := Key{SalonID: 1, ServiceID: 10, Date: date}
	stale := []domain.CandidateSlot{{StartTime: date.Add(9 * time.Hour), EndTime: date.Add(10 * time.Hour), MasterID: 1}}

	// расчёт начался до записи, которая заняла слот
	miss, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, miss.Hit)

	require.NoError(t, cache.Invalidate(ctx, 1, date))
	require.NoError(t, cache.Set(ctx, key, miss.Version, stale))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
	assert.NotEqual(t, miss.Version, got.Version)

	// свежий расчёт под новой версией читается
	require.NoError(t, cache.Set(ctx, key, got.Version, []domain.CandidateSlot{}))
	got, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.Hit)
	assert.Empty(t, got.Slots)
}

func TestCache_InvalidateSalon(t *testing.T) {
	ctx := context.Background()
	cache := New(newMemRedis(), time.Minute)

	monday := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	slots := []domain.CandidateSlot{{StartTime: monday, EndTime: monday.Add(time.Hour), MasterID: 1}}

	for _, d := range []time.Time{monday, tuesday} {
		key := Key{SalonID: 1, ServiceID: 1, Date: d}
		lookup, err := cache.Get(ctx, key)
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, key, lookup.Version, slots))
	}

	require.NoError(t, cache.InvalidateSalon(ctx, 1))

	for _, d := range []time.Time{monday, tuesday} {
		got, err := cache.Get(ctx, Key{SalonID: 1, ServiceID: 1, Date: d})
		require.NoError(t, err)
		assert.False(t, got.Hit, d)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := New(newMemRedis(), 0)
	key := Key{SalonID: 1, ServiceID: 1, Date: time.Now()}

	require.NoError(t, cache.Set(context.Background(), key, "0.0", []domain.CandidateSlot{{MasterID: 1}}))
	got, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestEntryKey(t *testing.T) {
	date := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "slots:1:2025-10-13:v2.4:10:all", entryKey(Key{SalonID: 1, ServiceID: 10, Date: date}, "2.4"))
	assert.Equal(t, "slots:ver:1:2025-10-13", versionKey(1, date))
	assert.Equal(t, "slots:ver:1", salonVersionKey(1))
}
