package working_hours

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const (
	msgInvalidSalonID  = "некорректный ID салона"
	msgInvalidMasterID = "некорректный ID мастера"
	msgMissingDate     = "дата обязательна"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgNotFound        = "салон или мастер не найден"
	msgInvalidHours    = "некорректные часы работы мастера на дату"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/masters/{masterId}/working-hours?date
// Пустой список интервалов - выходной
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	salonID, err := handlers.ParseID(vars["salonId"])
	if err != nil {
		h.logger.Warn("GET /salons/{id}/masters/{id}/working-hours - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	masterID, err := handlers.ParseID(vars["masterId"])
	if err != nil {
		h.logger.Warn("GET /salons/{id}/masters/{id}/working-hours - Invalid master ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMasterID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/masters/{id}/working-hours - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetWorkingHours(r.Context(), salonID, masterID, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("GET /salons/{id}/masters/{id}/working-hours - Not found: salon_id=%d, master_id=%d", salonID, masterID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrInvalidInterval):
			h.logger.Warn("GET /salons/{id}/masters/{id}/working-hours - Invalid stored hours: master_id=%d, date=%s, error=%v",
				masterID, dateStr, err)
			handlers.RespondBadRequest(w, msgInvalidHours)

		default:
			h.logger.Error("GET /salons/{id}/masters/{id}/working-hours - Failed to resolve: master_id=%d, error=%v", masterID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /salons/{id}/masters/{id}/working-hours - Resolved: master_id=%d, date=%s, intervals=%d",
		masterID, dateStr, len(result.Intervals))
	handlers.RespondJSON(w, http.StatusOK, result)
}
