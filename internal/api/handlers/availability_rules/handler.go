package availability_rules

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidMasterID    = "некорректный ID мастера"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "салон или мастер не найден"
	msgForbidden          = "нет прав на изменение расписания мастера"
	msgInvalidRules       = "некорректные правила расписания"
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

// HandleGet GET /api/v1/salons/{salonId}/masters/{masterId}/availability-rules
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "GET")
	if !ok {
		return
	}

	result, err := h.service.GetRules(r.Context(), salonID, masterID)
	if err != nil {
		h.respondError(w, "GET", err, salonID, masterID)
		return
	}

	h.logger.Info("GET /salons/{id}/masters/{id}/availability-rules - Rules retrieved: master_id=%d, count=%d",
		masterID, len(result.Rules))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleSet PUT /api/v1/salons/{salonId}/masters/{masterId}/availability-rules
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "PUT")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /salons/{id}/masters/{id}/availability-rules - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req SetRulesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salons/{id}/masters/{id}/availability-rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.SetRules(r.Context(), req.ToServiceRequest(salonID, masterID, userID))
	if err != nil {
		h.respondError(w, "PUT", err, salonID, masterID)
		return
	}

	h.logger.Info("PUT /salons/{id}/masters/{id}/availability-rules - Rules updated: master_id=%d, user_id=%d",
		masterID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parsePath(w http.ResponseWriter, r *http.Request, method string) (int64, int64, bool) {
	vars := mux.Vars(r)

	salonID, err := handlers.ParseID(vars["salonId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-rules - Invalid salon ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return 0, 0, false
	}

	masterID, err := handlers.ParseID(vars["masterId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-rules - Invalid master ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidMasterID)
		return 0, 0, false
	}

	return salonID, masterID, true
}

func (h *Handler) respondError(w http.ResponseWriter, method string, err error, salonID, masterID int64) {
	switch {
	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-rules - Invalid rules: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondBadRequest(w, msgInvalidRules)

	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-rules - Not found: salon_id=%d, master_id=%d", method, salonID, masterID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, access.ErrAccessDenied):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-rules - Access denied: salon_id=%d, master_id=%d", method, salonID, masterID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("%s /salons/{id}/masters/{id}/availability-rules - Failed: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondInternalError(w)
	}
}
