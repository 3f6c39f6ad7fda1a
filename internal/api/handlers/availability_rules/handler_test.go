package availability_rules

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
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type fakeService struct {
	got *models.SetRulesRequest
	err error
}

func (f *fakeService) GetRules(_ context.Context, _, masterID int64) (*models.RulesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.RulesResponse{MasterID: masterID, Rules: []models.RuleResponse{}}, nil
}

func (f *fakeService) SetRules(_ context.Context, req *models.SetRulesRequest) (*models.RulesResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RulesResponse{MasterID: req.MasterID}, nil
}

func serve(svc *fakeService, method, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-rules", h.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/salons/{salonId}/masters/{masterId}/availability-rules", h.HandleSet).Methods(http.MethodPut)

	req := httptest.NewRequest(method, "/salons/1/masters/7/availability-rules", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleSet(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodPut,
		`{"rules":[{"dayOfWeek":1,"startTime":"09:00","endTime":"18:00","isWorking":true},{"dayOfWeek":7,"isWorking":false}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(7), svc.got.MasterID)
	assert.Equal(t, int64(2), svc.got.UserID)
	require.Len(t, svc.got.Rules, 2)
	assert.Equal(t, "09:00", svc.got.Rules[0].StartTime)
	assert.False(t, svc.got.Rules[1].IsWorking)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		method string
		err    error
		status int
	}{
		{http.MethodGet, nil, http.StatusOK},
		{http.MethodGet, access.ErrMasterNotFound, http.StatusNotFound},
		{http.MethodPut, availability.ErrInvalidInput, http.StatusBadRequest},
		{http.MethodPut, access.ErrAccessDenied, http.StatusForbidden},
		{http.MethodPut, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := serve(&fakeService{err: tt.err}, tt.method, `{"rules":[]}`)
		assert.Equal(t, tt.status, rec.Code, "%s %v", tt.method, tt.err)
	}
}
