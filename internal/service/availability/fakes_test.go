package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

type ruleKey struct {
	masterID int64
	day      int
}

type overrideKey struct {
	masterID int64
	date     string
}

// fakeRuleRepo хранилище правил в памяти
type fakeRuleRepo struct {
	rules     map[ruleKey]*domain.WeeklyAvailabilityRule
	overrides map[overrideKey]*domain.AvailabilityOverride
	nextID    int64
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{
		rules:     map[ruleKey]*domain.WeeklyAvailabilityRule{},
		overrides: map[overrideKey]*domain.AvailabilityOverride{},
	}
}

func (f *fakeRuleRepo) GetRule(_ context.Context, _, masterID int64, day int) (*domain.WeeklyAvailabilityRule, error) {
	if r, ok := f.rules[ruleKey{masterID, day}]; ok {
		return r, nil
	}
	return nil, availabilityRepo.ErrRuleNotFound
}

func (f *fakeRuleRepo) GetRules(_ context.Context, _, masterID int64) ([]*domain.WeeklyAvailabilityRule, error) {
	var out []*domain.WeeklyAvailabilityRule
	for day := 1; day <= 7; day++ {
		if r, ok := f.rules[ruleKey{masterID, day}]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) UpsertRules(_ context.Context, rules []*domain.WeeklyAvailabilityRule) error {
	for _, r := range rules {
		f.rules[ruleKey{r.MasterID, r.DayOfWeek}] = r
	}
	return nil
}

func (f *fakeRuleRepo) GetOverride(_ context.Context, _, masterID int64, date time.Time) (*domain.AvailabilityOverride, error) {
	if o, ok := f.overrides[overrideKey{masterID, date.Format(domain.DateFormat)}]; ok {
		return o, nil
	}
	return nil, availabilityRepo.ErrOverrideNotFound
}

func (f *fakeRuleRepo) GetOverrides(_ context.Context, _, masterID int64, from, to time.Time) ([]*domain.AvailabilityOverride, error) {
	var out []*domain.AvailabilityOverride
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if o, ok := f.overrides[overrideKey{masterID, d.Format(domain.DateFormat)}]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) CreateOverride(_ context.Context, o *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error) {
	key := overrideKey{o.MasterID, o.Date.Format(domain.DateFormat)}
	if _, ok := f.overrides[key]; ok {
		return nil, availabilityRepo.ErrDuplicateOverride
	}
	f.nextID++
	o.ID = f.nextID
	f.overrides[key] = o
	return o, nil
}

func (f *fakeRuleRepo) DeleteOverride(_ context.Context, _, masterID int64, date time.Time) error {
	key := overrideKey{masterID, date.Format(domain.DateFormat)}
	if _, ok := f.overrides[key]; !ok {
		return availabilityRepo.ErrOverrideNotFound
	}
	delete(f.overrides, key)
	return nil
}

type fakeSalonClient struct {
	salons  map[int64]*salonservice.Salon
	masters map[int64]*salonservice.Master
}

func (f *fakeSalonClient) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if s, ok := f.salons[salonID]; ok {
		return s, nil
	}
	return nil, salonservice.ErrSalonNotFound
}

func (f *fakeSalonClient) GetMaster(_ context.Context, _, masterID int64) (*salonservice.Master, error) {
	if m, ok := f.masters[masterID]; ok {
		return m, nil
	}
	return nil, salonservice.ErrMasterNotFound
}

type fakeSlotCache struct {
	days   []string
	salons []int64
}

func (f *fakeSlotCache) Invalidate(_ context.Context, _ int64, date time.Time) error {
	f.days = append(f.days, date.Format(domain.DateFormat))
	return nil
}

func (f *fakeSlotCache) InvalidateSalon(_ context.Context, salonID int64) error {
	f.salons = append(f.salons, salonID)
	return nil
}

const (
	salonID   int64 = 1
	masterID  int64 = 7
	managerID int64 = 100
	masterUID int64 = 700
)

func newAccess() *access.Checker {
	client := &fakeSalonClient{
		salons: map[int64]*salonservice.Salon{
			salonID: {ID: salonID, Timezone: "Europe/Moscow", ManagerIDs: []int64{managerID}},
		},
		masters: map[int64]*salonservice.Master{
			masterID: {ID: masterID, SalonID: salonID, UserID: ptr.Ptr(masterUID), IsActive: true},
		},
	}
	return access.NewChecker(client, logger.NewNop())
}

// weekdays09to18 понедельник-пятница 09:00-18:00, выходные нерабочие
func weekdays09to18(repo *fakeRuleRepo) {
	for day := 1; day <= 7; day++ {
		repo.rules[ruleKey{masterID, day}] = &domain.WeeklyAvailabilityRule{
			SalonID:   salonID,
			MasterID:  masterID,
			DayOfWeek: day,
			StartTime: types.TimeString("09:00"),
			EndTime:   types.TimeString("18:00"),
			IsWorking: day <= 5,
		}
	}
}
