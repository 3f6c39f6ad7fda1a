package time_blocks

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
	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type fakeService struct {
	created *models.CreateTimeBlockRequest
	deleted int64
	err     error
}

func (f *fakeService) Create(_ context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.TimeBlockResponse{ID: 3, MasterID: req.MasterID, Type: req.Type}, nil
}

func (f *fakeService) List(context.Context, int64, int64, time.Time, time.Time) (*models.TimeBlockListResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.TimeBlockListResponse{TimeBlocks: []models.TimeBlockResponse{}}, nil
}

func (f *fakeService) Delete(_ context.Context, _, _, blockID, _ int64) error {
	f.deleted = blockID
	return f.err
}

func serve(svc *fakeService, method, path, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	base := "/salons/{salonId}/masters/{masterId}/time-blocks"
	r.HandleFunc(base, h.HandleList).Methods(http.MethodGet)
	r.HandleFunc(base, h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc(base+"/{blockId}", h.HandleDelete).Methods(http.MethodDelete)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const blockBody = `{"type":"BREAK","title":"обед","startTime":"2025-10-13T13:00:00+03:00","endTime":"2025-10-13T14:00:00+03:00","recurring":true}`

func TestHandleCreate(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodPost, "/salons/1/masters/7/time-blocks", blockBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "BREAK", svc.created.Type)
	assert.True(t, svc.created.Recurring)
	assert.Equal(t, time.Hour, svc.created.EndTime.Sub(svc.created.StartTime))
}

func TestHandleCreate_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{timeblocks.ErrInvalidInput, http.StatusBadRequest},
		{timeblocks.ErrOverlapsAppointment, http.StatusConflict},
		{timeblocks.ErrOverlapsBlock, http.StatusConflict},
		{access.ErrMasterNotFound, http.StatusNotFound},
		{access.ErrAccessDenied, http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := serve(&fakeService{err: tt.err}, http.MethodPost, "/salons/1/masters/7/time-blocks", blockBody)
		assert.Equal(t, tt.status, rec.Code, tt.err)
	}

	rec := serve(&fakeService{}, http.MethodPost, "/salons/1/masters/7/time-blocks",
		`{"type":"BREAK","startTime":"13:00","endTime":"14:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteAndList(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodDelete, "/salons/1/masters/7/time-blocks/3", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(3), svc.deleted)

	rec = serve(&fakeService{err: timeblocks.ErrTimeBlockNotFound}, http.MethodDelete, "/salons/1/masters/7/time-blocks/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(svc, http.MethodGet, "/salons/1/masters/7/time-blocks?from=2025-10-13T00:00:00Z&to=2025-10-20T00:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(svc, http.MethodGet, "/salons/1/masters/7/time-blocks?from=2025-10-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
