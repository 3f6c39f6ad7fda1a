package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/clientservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/validator"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// monday 2025-10-13, UTC
var monday = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return monday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

const (
	managerID = int64(100)
	clientID  = int64(500)
)

// memStore хранилище записей; общее для репозитория и агрегатора занятости
type memStore struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	history      []*domain.AppointmentHistory
	createErr    error
	locks        int
}

func (s *memStore) GetOccupying(_ context.Context, f domain.OccupancyFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Appointment
	for _, a := range s.appointments {
		if a.MasterID == f.MasterID && a.IsActive() && a.StartTime.Before(f.To) && a.EndTime.After(f.From) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) LockMaster(context.Context, int64, int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks++
	return nil
}

func (s *memStore) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	copied := *a
	copied.ID = int64(len(s.appointments) + 1)
	s.appointments = append(s.appointments, &copied)
	return &copied, nil
}

func (s *memStore) AddHistory(_ context.Context, h *domain.AppointmentHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, h)
	return nil
}

type noBlocks struct{}

func (noBlocks) GetForMaster(context.Context, int64, int64, domain.TimeInterval) ([]*domain.TimeBlock, error) {
	return nil, nil
}

// weekdayHours пн-пт 09:00-18:00
type weekdayHours struct{}

func (weekdayHours) WorkingIntervals(_ context.Context, _, _ int64, date time.Time, loc *time.Location) ([]domain.TimeInterval, error) {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return []domain.TimeInterval{}, nil
	}
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return []domain.TimeInterval{{Start: d.Add(9 * time.Hour), End: d.Add(18 * time.Hour)}}, nil
}

type fakeSalonClient struct{}

func (fakeSalonClient) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if salonID != 1 {
		return nil, salonservice.ErrSalonNotFound
	}
	return &salonservice.Salon{ID: 1, Timezone: "UTC", Currency: "RUB", ManagerIDs: []int64{managerID}}, nil
}

func (fakeSalonClient) GetService(_ context.Context, _, serviceID int64) (*salonservice.Service, error) {
	switch serviceID {
	case 10:
		return &salonservice.Service{
			ID: 10, SalonID: 1, Name: "Стрижка", DurationMinutes: 30, BufferMinutes: 0,
			Price: ptr.Ptr(1500.0), IsActive: true, MasterIDs: []int64{7},
		}, nil
	case 11:
		return &salonservice.Service{ID: 11, SalonID: 1, DurationMinutes: 30, IsActive: false, MasterIDs: []int64{7}}, nil
	case 12:
		return &salonservice.Service{ID: 12, SalonID: 1, DurationMinutes: 30, BufferMinutes: 300, IsActive: true, MasterIDs: []int64{7}}, nil
	case 13:
		return &salonservice.Service{ID: 13, SalonID: 1, DurationMinutes: 30, BufferMinutes: -5, IsActive: true, MasterIDs: []int64{7}}, nil
	}
	return nil, salonservice.ErrServiceNotFound
}

func (fakeSalonClient) GetMaster(_ context.Context, _, masterID int64) (*salonservice.Master, error) {
	switch masterID {
	case 7:
		return &salonservice.Master{ID: 7, SalonID: 1, IsActive: true}, nil
	case 8:
		return &salonservice.Master{ID: 8, SalonID: 1, IsActive: true}, nil
	}
	return nil, salonservice.ErrMasterNotFound
}

type fakeClientService struct {
	admission clientservice.Admission
	err       error
}

func (f *fakeClientService) Admit(context.Context, int64, int64) (clientservice.Admission, error) {
	return f.admission, f.err
}

type fakePolicies struct {
	policy *domain.BookingPolicy
}

func (f *fakePolicies) Resolve(context.Context, int64) (*domain.BookingPolicy, error) {
	return f.policy, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []domain.EventType
}

func (f *fakeRecorder) Record(_ context.Context, eventType domain.EventType, _, _ *domain.Appointment, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

type fakeSlotCache struct {
	mu    sync.Mutex
	dates []string
}

func (f *fakeSlotCache) Invalidate(_ context.Context, _ int64, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dates = append(f.dates, date.Format(domain.DateFormat))
	return nil
}

// serialTx выполняет транзакции по одной, как блокировка мастера в PostgreSQL
type serialTx struct {
	mu  sync.Mutex
	err error
}

func (t *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return t.err
}

type countingMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts int
}

func (m *countingMetrics) IncAppointmentCreated(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) IncBookingConflict(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	uc       *UseCase
	store    *memStore
	clients  *fakeClientService
	policy   *domain.BookingPolicy
	recorder *fakeRecorder
	cache    *fakeSlotCache
	tx       *serialTx
	metrics  *countingMetrics
}

func newFixture() *fixture {
	f := &fixture{
		store:    &memStore{},
		clients:  &fakeClientService{admission: clientservice.AdmissionAllowed},
		policy:   &domain.BookingPolicy{SalonID: 1, MinAdvanceMinutes: 60, MaxFutureDays: 30, BufferMinutes: 10, SlotStepMinutes: 15},
		recorder: &fakeRecorder{},
		cache:    &fakeSlotCache{},
		tx:       &serialTx{},
		metrics:  &countingMetrics{},
	}

	v := validator.New(weekdayHours{}, occupancy.NewAggregator(f.store, noBlocks{}))
	f.uc = NewUseCase(
		f.store,
		fakeSalonClient{},
		f.clients,
		&fakePolicies{policy: f.policy},
		v,
		f.recorder,
		f.cache,
		f.tx,
		f.metrics,
		logger.NewNop(),
	)
	f.uc.timeProvider = fixedTime{now: monday.AddDate(0, 0, -1)}
	return f
}

func request(userID int64, start time.Time) *Request {
	return &Request{
		SalonID:   1,
		UserID:    userID,
		ClientID:  clientID,
		ServiceID: 10,
		MasterID:  7,
		StartTime: start,
	}
}

func TestExecute_ClientBooksOnline(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, string(domain.SourceOnline), resp.Source)
	assert.True(t, at(10, 30).Equal(resp.EndTime))
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.Equal(t, 1500.0, resp.Price)
	assert.Equal(t, "RUB", resp.Currency)

	require.Len(t, f.store.history, 1)
	assert.Equal(t, domain.ActionCreated, f.store.history[0].Action)
	assert.Equal(t, clientID, f.store.history[0].ChangedBy)
	assert.Equal(t, []domain.EventType{domain.EventAppointmentCreated}, f.recorder.events)
	assert.Equal(t, []string{"2025-10-13"}, f.cache.dates)
	assert.Equal(t, 1, f.store.locks)
	assert.Equal(t, 1, f.metrics.created)
}

func TestExecute_InitialStatus(t *testing.T) {
	t.Run("manual by manager", func(t *testing.T) {
		f := newFixture()
		resp, err := f.uc.Execute(context.Background(), request(managerID, at(10, 0)))
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
		assert.Equal(t, string(domain.SourceManual), resp.Source)
	})

	t.Run("auto confirm", func(t *testing.T) {
		f := newFixture()
		f.policy.AutoConfirm = true
		req := request(clientID, at(10, 0))
		req.Source = domain.SourceWhatsApp
		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
		assert.Equal(t, string(domain.SourceWhatsApp), resp.Source)
	})
}

func TestExecute_Access(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), request(777, at(10, 0)))
	assert.ErrorIs(t, err, ErrAccessDenied)

	req := request(clientID, at(10, 0))
	req.Source = domain.SourceManual
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Empty(t, f.store.appointments)
}

func TestExecute_BufferedConflict(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
	require.NoError(t, err)

	// 10:30-11:00 пересекает буфер 10 минут первой записи
	_, err = f.uc.Execute(context.Background(), request(clientID, at(10, 30)))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrBookingConflict)

	// 10:50 касается буфера, но не пересекает его
	_, err = f.uc.Execute(context.Background(), request(clientID, at(10, 50)))
	assert.NoError(t, err)

	assert.Equal(t, 1, f.metrics.conflicts)
	assert.Len(t, f.store.appointments, 2)
}

func TestExecute_PolicyViolations(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
	}{
		{"before min advance", monday.AddDate(0, 0, -1).Add(30 * time.Minute)},
		{"beyond horizon", at(10, 0).AddDate(0, 0, 40)},
		{"outside working hours", at(17, 45)},
		{"weekend", at(10, 0).AddDate(0, 0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.Execute(context.Background(), request(clientID, tt.start))
			assert.ErrorIs(t, err, domain.ErrPolicyViolation)
			assert.Empty(t, f.store.appointments)
		})
	}
}

func TestExecute_ReferenceErrors(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"salon", func(r *Request) { r.SalonID = 2 }, ErrSalonNotFound},
		{"service", func(r *Request) { r.ServiceID = 99 }, ErrServiceNotFound},
		{"inactive service", func(r *Request) { r.ServiceID = 11 }, ErrServiceInactive},
		{"buffer too long", func(r *Request) { r.ServiceID = 12 }, ErrInternal},
		{"negative buffer", func(r *Request) { r.ServiceID = 13 }, ErrInternal},
		{"master", func(r *Request) { r.MasterID = 99 }, ErrMasterNotFound},
		{"not qualified", func(r *Request) { r.MasterID = 8 }, ErrMasterNotQualified},
		{"no start", func(r *Request) { r.StartTime = time.Time{} }, ErrInvalidInput},
		{"bad source", func(r *Request) { r.Source = "telegram" }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(managerID, at(10, 0))
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_ClientService(t *testing.T) {
	t.Run("unverified", func(t *testing.T) {
		f := newFixture()
		f.clients.admission = clientservice.AdmissionUnverified
		_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.clients.admission = clientservice.AdmissionDenied
		f.clients.err = clientservice.ErrClientNotFound
		_, err := f.uc.Execute(context.Background(), request(managerID, at(10, 0)))
		assert.ErrorIs(t, err, ErrClientNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blocked", func(t *testing.T) {
		f := newFixture()
		f.clients.admission = clientservice.AdmissionBlocked
		_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
		assert.ErrorIs(t, err, ErrClientBlocked)
	})
}

func TestExecute_StorageConflicts(t *testing.T) {
	t.Run("exclusion constraint", func(t *testing.T) {
		f := newFixture()
		f.store.createErr = appointmentRepo.ErrOverlap
		_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("serialization failure", func(t *testing.T) {
		f := newFixture()
		f.tx.err = fmt.Errorf("%w: could not serialize access", txmanager.ErrSerializationFailure)
		_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.Equal(t, 0, f.metrics.created)
	})

	t.Run("other storage error", func(t *testing.T) {
		f := newFixture()
		f.store.createErr = errors.New("connection reset")
		_, err := f.uc.Execute(context.Background(), request(clientID, at(10, 0)))
		assert.ErrorIs(t, err, ErrInternal)
		assert.NotErrorIs(t, err, domain.ErrBookingConflict)
	})
}

func TestExecute_ConcurrentRace(t *testing.T) {
	f := newFixture()
	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), request(managerID, at(10, 0)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrBookingConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, f.store.appointments, 1)
}

func TestExecute_CommitIgnoresClientCancellation(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	f.uc.txManager = cancelBeforeCommit{inner: f.tx, cancel: cancel}

	_, err := f.uc.Execute(ctx, request(clientID, at(10, 0)))
	require.NoError(t, err)
	assert.Len(t, f.store.appointments, 1)
}

// cancelBeforeCommit отменяет контекст клиента сразу после начала транзакции
type cancelBeforeCommit struct {
	inner  *serialTx
	cancel context.CancelFunc
}

func (c cancelBeforeCommit) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.inner.DoSerializable(ctx, func(txCtx context.Context) error {
		c.cancel()
		return fn(txCtx)
	})
}
