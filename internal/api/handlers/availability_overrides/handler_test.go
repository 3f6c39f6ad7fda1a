package availability_overrides

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
	created  *models.CreateOverrideRequest
	deleted  time.Time
	from, to time.Time
	err      error
}

func (f *fakeService) GetOverrides(_ context.Context, _, _ int64, from, to time.Time) (*models.OverrideListResponse, error) {
	f.from, f.to = from, to
	return &models.OverrideListResponse{Overrides: []models.OverrideResponse{}}, f.err
}

func (f *fakeService) CreateOverride(_ context.Context, req *models.CreateOverrideRequest) (*models.OverrideResponse, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.OverrideResponse{ID: 1, MasterID: req.MasterID, Date: "2025-10-15"}, nil
}

func (f *fakeService) DeleteOverride(_ context.Context, _, _, _ int64, date time.Time) error {
	f.deleted = date
	return f.err
}

func serve(svc *fakeService, method, path, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	base := "/salons/{salonId}/masters/{masterId}/availability-overrides"
	r.HandleFunc(base, h.HandleList).Methods(http.MethodGet)
	r.HandleFunc(base, h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc(base+"/{date}", h.HandleDelete).Methods(http.MethodDelete)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreate(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodPost, "/salons/1/masters/7/availability-overrides",
		`{"date":"2025-10-15","isWorking":true,"startTime":"12:00","endTime":"16:00","reason":"короткий день"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, 15, svc.created.Date.Day())
	assert.True(t, svc.created.IsWorking)
	assert.Equal(t, "12:00", *svc.created.StartTime)

	rec = serve(svc, http.MethodPost, "/salons/1/masters/7/availability-overrides", `{"date":"15.10.2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeService{err: availability.ErrOverrideExists}, http.MethodPost,
		"/salons/1/masters/7/availability-overrides", `{"date":"2025-10-15"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(&fakeService{err: access.ErrAccessDenied}, http.MethodPost,
		"/salons/1/masters/7/availability-overrides", `{"date":"2025-10-15"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodDelete, "/salons/1/masters/7/availability-overrides/2025-10-15", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 15, svc.deleted.Day())

	rec = serve(&fakeService{err: availability.ErrOverrideNotFound}, http.MethodDelete,
		"/salons/1/masters/7/availability-overrides/2025-10-15", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(svc, http.MethodDelete, "/salons/1/masters/7/availability-overrides/tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleList(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodGet, "/salons/1/masters/7/availability-overrides?from=2025-10-01&to=2025-10-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.from.Day())
	assert.Equal(t, 31, svc.to.Day())

	rec = serve(svc, http.MethodGet, "/salons/1/masters/7/availability-overrides?from=2025-10-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeService{err: availability.ErrInvalidInput}, http.MethodGet,
		"/salons/1/masters/7/availability-overrides?from=2025-10-31&to=2025-10-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
