package timeblocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	timeblockRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/timeblock"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

var day = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

type fakeBlockRepo struct {
	blocks map[int64]*domain.TimeBlock
	nextID int64
}

func (f *fakeBlockRepo) Create(_ context.Context, b *domain.TimeBlock) (*domain.TimeBlock, error) {
	f.nextID++
	b.ID = f.nextID
	f.blocks[b.ID] = b
	return b, nil
}

func (f *fakeBlockRepo) GetByID(_ context.Context, id int64) (*domain.TimeBlock, error) {
	if b, ok := f.blocks[id]; ok {
		return b, nil
	}
	return nil, timeblockRepo.ErrTimeBlockNotFound
}

func (f *fakeBlockRepo) GetForMaster(_ context.Context, _, masterID int64, rng domain.TimeInterval) ([]*domain.TimeBlock, error) {
	var out []*domain.TimeBlock
	for _, b := range f.blocks {
		if b.MasterID != masterID {
			continue
		}
		if b.Recurring && b.StartTime.Before(rng.End) || domain.Overlaps(b.Interval(), rng) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.blocks[id]; !ok {
		return timeblockRepo.ErrTimeBlockNotFound
	}
	delete(f.blocks, id)
	return nil
}

type fakeAppointmentRepo struct {
	items  []*domain.Appointment
	locked int
}

func (f *fakeAppointmentRepo) GetOccupying(_ context.Context, filter domain.OccupancyFilter) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range f.items {
		if a.IsActive() && a.StartTime.Before(filter.To) && a.EndTime.After(filter.From) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) LockMaster(context.Context, int64, int64) error {
	f.locked++
	return nil
}

type fakeSalonClient struct{}

func (fakeSalonClient) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if salonID != 1 {
		return nil, salonservice.ErrSalonNotFound
	}
	return &salonservice.Salon{ID: 1, Timezone: "UTC", ManagerIDs: []int64{100}}, nil
}

func (fakeSalonClient) GetMaster(_ context.Context, _, masterID int64) (*salonservice.Master, error) {
	if masterID != 7 {
		return nil, salonservice.ErrMasterNotFound
	}
	return &salonservice.Master{ID: 7, SalonID: 1, UserID: ptr.Ptr(int64(700)), IsActive: true}, nil
}

type fakeSlotCache struct {
	days   []string
	salons int
}

func (f *fakeSlotCache) Invalidate(_ context.Context, _ int64, date time.Time) error {
	f.days = append(f.days, date.Format(domain.DateFormat))
	return nil
}

func (f *fakeSlotCache) InvalidateSalon(context.Context, int64) error {
	f.salons++
	return nil
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc    *Service
	blocks *fakeBlockRepo
	appts  *fakeAppointmentRepo
	cache  *fakeSlotCache
}

func newFixture() *fixture {
	f := &fixture{
		blocks: &fakeBlockRepo{blocks: map[int64]*domain.TimeBlock{}},
		appts:  &fakeAppointmentRepo{},
		cache:  &fakeSlotCache{},
	}
	checker := access.NewChecker(fakeSalonClient{}, logger.NewNop())
	f.svc = NewService(f.blocks, f.appts, checker, f.cache, passThroughTx{}, logger.NewNop())
	return f
}

func request(blockType string, from, to time.Time) *models.CreateTimeBlockRequest {
	return &models.CreateTimeBlockRequest{
		SalonID: 1, MasterID: 7, UserID: 700, Type: blockType, StartTime: from, EndTime: to,
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), request("BREAK", at(13, 0), at(14, 0)))
	require.NoError(t, err)
	assert.Equal(t, "BREAK", resp.Type)
	assert.Equal(t, 1, f.appts.locked)
	assert.Equal(t, []string{"2025-10-13"}, f.cache.days)
}

func TestCreate_RejectsOverlapWithAppointment(t *testing.T) {
	f := newFixture()
	f.appts.items = []*domain.Appointment{
		{ID: 1, MasterID: 7, StartTime: at(13, 30), EndTime: at(14, 0), Status: domain.StatusPending},
	}

	_, err := f.svc.Create(context.Background(), request("BLOCKED", at(13, 0), at(14, 0)))
	assert.ErrorIs(t, err, ErrOverlapsAppointment)
	assert.ErrorIs(t, err, domain.ErrBookingConflict)

	// отменённая запись не мешает
	f.appts.items[0].Status = domain.StatusCancelled
	_, err = f.svc.Create(context.Background(), request("BLOCKED", at(13, 0), at(14, 0)))
	assert.NoError(t, err)
}

func TestCreate_BlocksOfDifferentType(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("BREAK", at(13, 0), at(14, 0)))
	require.NoError(t, err)

	// тот же тип допускается
	_, err = f.svc.Create(ctx, request("BREAK", at(13, 30), at(14, 30)))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, request("PERSONAL", at(13, 45), at(15, 0)))
	assert.ErrorIs(t, err, ErrOverlapsBlock)

	// касание границы не пересечение
	_, err = f.svc.Create(ctx, request("PERSONAL", at(14, 30), at(15, 0)))
	assert.NoError(t, err)
}

func TestCreate_RecurringDayOfWeek(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// встреча в среду 2025-10-15
	f.appts.items = []*domain.Appointment{
		{ID: 1, MasterID: 7, StartTime: at(13, 0).AddDate(0, 0, 2), EndTime: at(13, 30).AddDate(0, 0, 2), Status: domain.StatusConfirmed},
	}

	wednesday := 3
	req := request("BREAK", at(13, 0), at(14, 0))
	req.Recurring = true
	req.DayOfWeek = &wednesday

	_, err := f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrOverlapsAppointment)

	// без dayOfWeek блок повторяется по дню недели начала (понедельник)
	req.DayOfWeek = nil
	resp, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resp.DayOfWeek)
	assert.Equal(t, 1, *resp.DayOfWeek)
	assert.Equal(t, 1, f.cache.salons)
}

func TestCreate_RecurringRejectsLaterOccurrence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// подтверждённая запись в следующий понедельник 2025-10-20 13:00
	f.appts.items = []*domain.Appointment{
		{ID: 1, MasterID: 7, StartTime: at(13, 0).AddDate(0, 0, 7), EndTime: at(13, 30).AddDate(0, 0, 7), Status: domain.StatusConfirmed},
	}

	req := request("BREAK", at(13, 0), at(14, 0))
	req.Recurring = true

	_, err := f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrOverlapsAppointment)
	assert.Empty(t, f.blocks.blocks)

	// запись за полгода вперёд тоже мешает
	f.appts.items[0].StartTime = at(13, 0).AddDate(0, 0, 7*26)
	f.appts.items[0].EndTime = at(13, 30).AddDate(0, 0, 7*26)
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrOverlapsAppointment)

	// запись до начала блока не мешает
	f.appts.items[0].StartTime = at(13, 0).AddDate(0, 0, -7)
	f.appts.items[0].EndTime = at(13, 30).AddDate(0, 0, -7)
	_, err = f.svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreate_RecurringBlocksCollide(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// разовый отпуск через две недели
	_, err := f.svc.Create(ctx, request("VACATION", at(9, 0).AddDate(0, 0, 14), at(18, 0).AddDate(0, 0, 14)))
	require.NoError(t, err)

	req := request("BREAK", at(13, 0), at(14, 0))
	req.Recurring = true
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrOverlapsBlock)

	// еженедельный личный блок по вторникам
	tuesday := request("PERSONAL", at(12, 0).AddDate(0, 0, 1), at(13, 0).AddDate(0, 0, 1))
	tuesday.Recurring = true
	_, err = f.svc.Create(ctx, tuesday)
	require.NoError(t, err)

	// перерыв по вторникам, начинающийся через месяц, попадает на личный блок
	later := request("BREAK", at(12, 30).AddDate(0, 0, 29), at(13, 30).AddDate(0, 0, 29))
	later.Recurring = true
	_, err = f.svc.Create(ctx, later)
	assert.ErrorIs(t, err, ErrOverlapsBlock)

	// перерыв по вторникам после личного блока не пересекается
	later = request("BREAK", at(13, 0).AddDate(0, 0, 29), at(14, 0).AddDate(0, 0, 29))
	later.Recurring = true
	_, err = f.svc.Create(ctx, later)
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("LUNCH", at(13, 0), at(14, 0)))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(ctx, request("BREAK", at(14, 0), at(13, 0)))
	assert.ErrorIs(t, err, ErrInvalidInput)

	req := request("BREAK", at(13, 0), at(13, 0).Add(25*time.Hour))
	req.Recurring = true
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = request("BREAK", at(13, 0), at(14, 0))
	req.UserID = 5
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, access.ErrAccessDenied)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, request("BREAK", at(23, 0), at(23, 0).Add(2*time.Hour)))
	require.NoError(t, err)
	f.cache.days = nil

	err = f.svc.Delete(ctx, 1, 7, created.ID, 100)
	require.NoError(t, err)
	// блок через полночь сбрасывает кэш обоих дней
	assert.Equal(t, []string{"2025-10-13", "2025-10-14"}, f.cache.days)

	err = f.svc.Delete(ctx, 1, 7, created.ID, 100)
	assert.ErrorIs(t, err, ErrTimeBlockNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("BREAK", at(13, 0), at(14, 0)))
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, 1, 7, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, resp.TimeBlocks, 1)

	_, err = f.svc.List(ctx, 1, 7, day, day)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
