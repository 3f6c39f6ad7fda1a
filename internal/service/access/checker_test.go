package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

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

func newChecker() *Checker {
	client := &fakeSalonClient{
		salons: map[int64]*salonservice.Salon{
			1: {ID: 1, ManagerIDs: []int64{100}},
		},
		masters: map[int64]*salonservice.Master{
			7: {ID: 7, SalonID: 1, UserID: ptr.Ptr(int64(700)), IsActive: true},
			8: {ID: 8, SalonID: 1, IsActive: true},
		},
	}
	return NewChecker(client, logger.NewNop())
}

func TestChecker_RequireManager(t *testing.T) {
	c := newChecker()

	salon, err := c.RequireManager(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), salon.ID)

	_, err = c.RequireManager(context.Background(), 1, 700)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = c.RequireManager(context.Background(), 2, 100)
	assert.ErrorIs(t, err, ErrSalonNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChecker_RequireScheduleEditor(t *testing.T) {
	c := newChecker()
	ctx := context.Background()

	tests := []struct {
		name     string
		masterID int64
		userID   int64
		wantErr  error
	}{
		{"manager edits any master", 8, 100, nil},
		{"master edits own schedule", 7, 700, nil},
		{"master edits other master", 8, 700, ErrAccessDenied},
		{"stranger", 7, 5, ErrAccessDenied},
		{"unknown master", 9, 100, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.RequireScheduleEditor(ctx, 1, tt.masterID, tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChecker_RequireParticipant(t *testing.T) {
	c := newChecker()
	ctx := context.Background()
	appointment := &domain.Appointment{ID: 1, SalonID: 1, MasterID: 7, ClientID: 55}

	for _, userID := range []int64{100, 55, 700} {
		_, err := c.RequireParticipant(ctx, appointment, userID)
		assert.NoError(t, err, userID)
	}

	_, err := c.RequireParticipant(ctx, appointment, 5)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// мастер без пользователя портала
	other := &domain.Appointment{ID: 2, SalonID: 1, MasterID: 8, ClientID: 55}
	_, err = c.RequireParticipant(ctx, other, 700)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
