package update_appointment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	updateAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type fakeUseCase struct {
	got *updateAppointment.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *updateAppointment.Request) (*models.AppointmentResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: req.AppointmentID, Status: string(domain.StatusConfirmed)}, nil
}

func serve(uc *fakeUseCase, path, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/appointments/{appointmentId}", NewHandler(uc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 3))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Reschedule(t *testing.T) {
	uc := &fakeUseCase{}
	rec := serve(uc, "/salons/1/appointments/20", `{"startTime":"2025-10-14T11:00:00Z","masterId":8}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(20), uc.got.AppointmentID)
	assert.Equal(t, int64(3), uc.got.UserID)
	require.NotNil(t, uc.got.StartTime)
	assert.Equal(t, 11, uc.got.StartTime.Hour())
	require.NotNil(t, uc.got.MasterID)
	assert.True(t, uc.got.IsReschedule())
	assert.Nil(t, uc.got.Status)
}

func TestHandle_StatusOnly(t *testing.T) {
	uc := &fakeUseCase{}
	rec := serve(uc, "/salons/1/appointments/20", `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got.Status)
	assert.Equal(t, "confirmed", *uc.got.Status)
	assert.False(t, uc.got.IsReschedule())
}

func TestHandle_BadInput(t *testing.T) {
	for _, tt := range []struct{ path, body string }{
		{"/salons/0/appointments/20", `{}`},
		{"/salons/1/appointments/abc", `{}`},
		{"/salons/1/appointments/20", `not json`},
		{"/salons/1/appointments/20", `{"startTime":"tomorrow"}`},
	} {
		uc := &fakeUseCase{}
		rec := serve(uc, tt.path, tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt)
		assert.Nil(t, uc.got)
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{updateAppointment.ErrSlotNotAvailable, http.StatusConflict},
		{updateAppointment.ErrInvalidInput, http.StatusBadRequest},
		{updateAppointment.ErrAccessDenied, http.StatusForbidden},
		{updateAppointment.ErrSalonNotFound, http.StatusNotFound},
		{updateAppointment.ErrAppointmentNotFound, http.StatusNotFound},
		{updateAppointment.ErrMasterNotFound, http.StatusNotFound},
		{updateAppointment.ErrMasterInactive, http.StatusBadRequest},
		{updateAppointment.ErrMasterNotQualified, http.StatusBadRequest},
		{updateAppointment.ErrNotReschedulable, http.StatusBadRequest},
		{fmt.Errorf("domain: %w", domain.ErrInvalidStateTransition), http.StatusBadRequest},
		{fmt.Errorf("validator: %w", domain.ErrPolicyViolation), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(&fakeUseCase{err: tt.err}, "/salons/1/appointments/20", `{"status":"completed"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
