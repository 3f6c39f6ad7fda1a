package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

type fakeRepo struct {
	items      map[int64]*domain.Appointment
	lastFilter domain.AppointmentsFilter
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (f *fakeRepo) GetByFilter(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	f.lastFilter = filter
	var out []*domain.Appointment
	for _, a := range f.items {
		if a.SalonID != filter.SalonID {
			continue
		}
		if filter.ClientID != nil && a.ClientID != *filter.ClientID {
			continue
		}
		if filter.MasterID != nil && a.MasterID != *filter.MasterID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) GetHistory(_ context.Context, id int64) ([]*domain.AppointmentHistory, error) {
	status := domain.StatusPending
	return []*domain.AppointmentHistory{{AppointmentID: id, Action: domain.ActionCreated, NewStatus: &status, ChangedBy: 55}}, nil
}

type fakeSalonClient struct{}

func (fakeSalonClient) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if salonID != 1 {
		return nil, salonservice.ErrSalonNotFound
	}
	return &salonservice.Salon{ID: 1, ManagerIDs: []int64{100}}, nil
}

func (fakeSalonClient) GetMaster(_ context.Context, _, masterID int64) (*salonservice.Master, error) {
	if masterID != 7 {
		return nil, salonservice.ErrMasterNotFound
	}
	return &salonservice.Master{ID: 7, SalonID: 1, UserID: ptr.Ptr(int64(700)), IsActive: true}, nil
}

func newService() (*Service, *fakeRepo) {
	start := time.Date(2025, 10, 13, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{items: map[int64]*domain.Appointment{
		1: {ID: 1, SalonID: 1, ClientID: 55, MasterID: 7, StartTime: start, EndTime: start.Add(30 * time.Minute), Status: domain.StatusPending},
		2: {ID: 2, SalonID: 1, ClientID: 56, MasterID: 7, StartTime: start.Add(time.Hour), EndTime: start.Add(90 * time.Minute), Status: domain.StatusConfirmed},
		3: {ID: 3, SalonID: 2, ClientID: 55, MasterID: 9, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusPending},
	}}
	checker := access.NewChecker(fakeSalonClient{}, logger.NewNop())
	return NewService(repo, checker, logger.NewNop()), repo
}

func TestGetByID(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	resp, err := svc.GetByID(ctx, 1, 1, 55)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)

	_, err = svc.GetByID(ctx, 1, 1, 56)
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	// запись другого салона не видна через этот салон
	_, err = svc.GetByID(ctx, 1, 3, 100)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory(t *testing.T) {
	svc, _ := newService()

	resp, err := svc.History(context.Background(), 1, 1, 700)
	require.NoError(t, err)
	require.Len(t, resp.History, 1)
	assert.Equal(t, "created", resp.History[0].Action)
	assert.Equal(t, "pending", *resp.History[0].NewStatus)
}

func TestList_Scope(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	// менеджер видит все записи салона
	resp, err := svc.List(ctx, &models.ListAppointmentsRequest{SalonID: 1, UserID: 100})
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.ClientID)
	assert.Len(t, resp.Appointments, 2)

	// мастер видит свои записи
	_, err = svc.List(ctx, &models.ListAppointmentsRequest{SalonID: 1, UserID: 700, MasterID: ptr.Ptr(int64(7))})
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.ClientID)

	// клиент ограничен своими записями
	resp, err = svc.List(ctx, &models.ListAppointmentsRequest{SalonID: 1, UserID: 56})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.ClientID)
	assert.Equal(t, int64(56), *repo.lastFilter.ClientID)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, int64(2), resp.Appointments[0].ID)

	_, err = svc.List(ctx, &models.ListAppointmentsRequest{SalonID: 1, UserID: 56, ClientID: ptr.Ptr(int64(55))})
	assert.ErrorIs(t, err, access.ErrAccessDenied)
}

func TestList_InvalidFilter(t *testing.T) {
	svc, _ := newService()
	now := time.Now()

	_, err := svc.List(context.Background(), &models.ListAppointmentsRequest{SalonID: 1, UserID: 100, Status: ptr.Ptr("unknown")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(context.Background(), &models.ListAppointmentsRequest{SalonID: 1, UserID: 100, From: &now, To: &now})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
