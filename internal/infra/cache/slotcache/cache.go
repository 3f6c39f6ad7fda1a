package slotcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// versionTTL время жизни счётчика версий; заведомо больше TTL записей
const versionTTL = 48 * time.Hour

// Key параметры расчёта слотов на один день
type Key struct {
	SalonID   int64
	ServiceID int64
	MasterID  *int64 // nil - все мастера услуги
	Date      time.Time
}

// Cache кэш рассчитанных слотов в Redis
// Запись адресуется парой версий: салона и дня (salon, date). Изменение записей или блоков
// увеличивает версию дня, изменение правил или политики - версию салона;
// старые записи перестают читаться и истекают по TTL
type Cache struct {
	rdb RedisClient
	ttl time.Duration
}

// New создает кэш; ttl <= 0 выключает кэширование
func New(rdb RedisClient, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Lookup результат чтения из кэша
// Version - версия дня на момент чтения; рассчитанные после промаха слоты сохраняются только под ней,
// поэтому результат, посчитанный до инвалидации, не попадает под новую версию
type Lookup struct {
	Slots   []domain.CandidateSlot
	Hit     bool
	Version string
}

type entry struct {
	Start    time.Time `json:"s"`
	End      time.Time `json:"e"`
	MasterID int64     `json:"m"`
}

// Get читает слоты дня; при промахе Lookup.Version нужно передать в Set
func (c *Cache) Get(ctx context.Context, key Key) (Lookup, error) {
	if c.ttl <= 0 {
		return Lookup{}, nil
	}

	version, err := c.version(ctx, key.SalonID, key.Date)
	if err != nil {
		return Lookup{}, err
	}

	raw, err := c.rdb.Get(ctx, entryKey(key, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{Version: version}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("%w: Get: %v", ErrCache, err)
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Lookup{Version: version}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	slots := make([]domain.CandidateSlot, len(entries))
	for i, e := range entries {
		slots[i] = domain.CandidateSlot{StartTime: e.Start, EndTime: e.End, MasterID: e.MasterID}
	}
	return Lookup{Slots: slots, Hit: true, Version: version}, nil
}

// Set сохраняет слоты под версией, прочитанной в Get до расчёта
// Если версия с тех пор изменилась, запись никогда не будет прочитана и истечёт по TTL
func (c *Cache) Set(ctx context.Context, key Key, version string, slots []domain.CandidateSlot) error {
	if c.ttl <= 0 || version == "" {
		return nil
	}

	entries := make([]entry, len(slots))
	for i, s := range slots {
		entries[i] = entry{Start: s.StartTime, End: s.EndTime, MasterID: s.MasterID}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: Set - marshal: %v", ErrCache, err)
	}

	if err := c.rdb.Set(ctx, entryKey(key, version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %v", ErrCache, err)
	}
	return nil
}

// Invalidate делает недействительными все записи салона на дату
func (c *Cache) Invalidate(ctx context.Context, salonID int64, date time.Time) error {
	if c.ttl <= 0 {
		return nil
	}
	return c.bump(ctx, versionKey(salonID, date))
}

// InvalidateSalon делает недействительными все записи салона на любые даты
func (c *Cache) InvalidateSalon(ctx context.Context, salonID int64) error {
	if c.ttl <= 0 {
		return nil
	}
	return c.bump(ctx, salonVersionKey(salonID))
}

func (c *Cache) bump(ctx context.Context, vk string) error {
	if err := c.rdb.Incr(ctx, vk).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %v", ErrCache, err)
	}
	if err := c.rdb.Expire(ctx, vk, versionTTL).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate - expire: %v", ErrCache, err)
	}
	return nil
}

func (c *Cache) version(ctx context.Context, salonID int64, date time.Time) (string, error) {
	salonVer, err := c.counter(ctx, salonVersionKey(salonID))
	if err != nil {
		return "", err
	}
	dayVer, err := c.counter(ctx, versionKey(salonID, date))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", salonVer, dayVer), nil
}

func (c *Cache) counter(ctx context.Context, key string) (int64, error) {
	v, err := c.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: version: %v", ErrCache, err)
	}
	return v, nil
}

func salonVersionKey(salonID int64) string {
	return fmt.Sprintf("slots:ver:%d", salonID)
}

func versionKey(salonID int64, date time.Time) string {
	return fmt.Sprintf("slots:ver:%d:%s", salonID, date.Format(domain.DateFormat))
}

func entryKey(key Key, version string) string {
	master := "all"
	if key.MasterID != nil {
		master = strconv.FormatInt(*key.MasterID, 10)
	}
	return fmt.Sprintf("slots:%d:%s:v%s:%d:%s",
		key.SalonID, key.Date.Format(domain.DateFormat), version, key.ServiceID, master)
}
