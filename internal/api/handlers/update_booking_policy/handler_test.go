package update_booking_policy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/policy"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/policy/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type fakeService struct {
	got *models.UpdatePolicyRequest
	err error
}

func (f *fakeService) Update(_ context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.PolicyResponse{SalonID: req.SalonID}, nil
}

func serve(svc *fakeService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/booking-policy", NewHandler(svc, logger.NewNop()).Handle)
	req := httptest.NewRequest(http.MethodPut, "/salons/4/booking-policy", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_PartialUpdate(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, `{"bufferMinutes":15,"autoConfirm":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(4), svc.got.SalonID)
	assert.Equal(t, int64(1), svc.got.UserID)
	require.NotNil(t, svc.got.BufferMinutes)
	assert.Equal(t, 15, *svc.got.BufferMinutes)
	assert.Nil(t, svc.got.MinAdvanceMinutes)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{access.ErrSalonNotFound, http.StatusNotFound},
		{access.ErrAccessDenied, http.StatusForbidden},
		{policy.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := serve(&fakeService{err: tt.err}, `{"slotStepMinutes":15}`)
		assert.Equal(t, tt.status, rec.Code, tt.err)
	}

	// salonId из тела не принимается
	rec := serve(&fakeService{}, `{"salonId":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
