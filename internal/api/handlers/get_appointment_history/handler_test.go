package get_appointment_history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type fakeService struct {
	err error
}

func (f *fakeService) History(_ context.Context, _, id, userID int64) (*models.HistoryResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.HistoryResponse{
		AppointmentID: id,
		History: []models.HistoryEntryResponse{
			{Action: "created", ChangedBy: userID},
			{Action: "cancelled", ChangedBy: userID},
		},
	}, nil
}

func serve(svc AppointmentService, path string, userID int64) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/appointments/{appointmentId}/history",
		NewHandler(svc, logger.NewNop()).Handle)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	rec := serve(&fakeService{}, "/salons/1/appointments/5/history", 7)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.AppointmentID)
	require.Len(t, resp.History, 2)
	assert.Equal(t, "created", resp.History[0].Action)
	assert.Equal(t, int64(7), resp.History[1].ChangedBy)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		user   int64
		err    error
		status int
	}{
		{"bad salon", "/salons/x/appointments/5/history", 7, nil, http.StatusBadRequest},
		{"bad appointment", "/salons/1/appointments/0/history", 7, nil, http.StatusBadRequest},
		{"no user", "/salons/1/appointments/5/history", 0, nil, http.StatusUnauthorized},
		{"not found", "/salons/1/appointments/5/history", 7, appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{"forbidden", "/salons/1/appointments/5/history", 7, access.ErrAccessDenied, http.StatusForbidden},
		{"internal", "/salons/1/appointments/5/history", 7, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, tt.path, tt.user)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
