package availability_overrides

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
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingPeriod      = "параметры from и to обязательны"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "салон или мастер не найден"
	msgOverrideNotFound   = "исключение на эту дату не найдено"
	msgOverrideExists     = "исключение на эту дату уже существует"
	msgForbidden          = "нет прав на изменение расписания мастера"
	msgInvalidOverride    = "некорректные данные исключения"
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

// HandleList GET /api/v1/salons/{salonId}/masters/{masterId}/availability-overrides?from&to
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "GET")
	if !ok {
		return
	}

	query := r.URL.Query()
	if query.Get("from") == "" || query.Get("to") == "" {
		h.logger.Warn("GET /salons/{id}/masters/{id}/availability-overrides - Missing period")
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}
	from, err := handlers.ParseDate(query.Get("from"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := handlers.ParseDate(query.Get("to"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetOverrides(r.Context(), salonID, masterID, from, to)
	if err != nil {
		h.respondError(w, "GET", err, masterID)
		return
	}

	h.logger.Info("GET /salons/{id}/masters/{id}/availability-overrides - Overrides retrieved: master_id=%d, count=%d",
		masterID, len(result.Overrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleCreate POST /api/v1/salons/{salonId}/masters/{masterId}/availability-overrides
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "POST")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /salons/{id}/masters/{id}/availability-overrides - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateOverrideRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salons/{id}/masters/{id}/availability-overrides - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(salonID, masterID, userID)
	if err != nil {
		h.logger.Warn("POST /salons/{id}/masters/{id}/availability-overrides - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.CreateOverride(r.Context(), serviceReq)
	if err != nil {
		h.respondError(w, "POST", err, masterID)
		return
	}

	h.logger.Info("POST /salons/{id}/masters/{id}/availability-overrides - Override created: override_id=%d, master_id=%d, date=%s",
		result.ID, masterID, result.Date)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleDelete DELETE /api/v1/salons/{salonId}/masters/{masterId}/availability-overrides/{date}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "DELETE")
	if !ok {
		return
	}

	date, err := handlers.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		h.logger.Warn("DELETE /salons/{id}/masters/{id}/availability-overrides/{date} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /salons/{id}/masters/{id}/availability-overrides/{date} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeleteOverride(r.Context(), salonID, masterID, userID, date); err != nil {
		h.respondError(w, "DELETE", err, masterID)
		return
	}

	h.logger.Info("DELETE /salons/{id}/masters/{id}/availability-overrides/{date} - Override deleted: master_id=%d, date=%s",
		masterID, date.Format(domain.DateFormat))
	handlers.RespondNoContent(w)
}

func (h *Handler) parsePath(w http.ResponseWriter, r *http.Request, method string) (int64, int64, bool) {
	vars := mux.Vars(r)

	salonID, err := handlers.ParseID(vars["salonId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Invalid salon ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return 0, 0, false
	}

	masterID, err := handlers.ParseID(vars["masterId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Invalid master ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidMasterID)
		return 0, 0, false
	}

	return salonID, masterID, true
}

func (h *Handler) respondError(w http.ResponseWriter, method string, err error, masterID int64) {
	switch {
	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Invalid data: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondBadRequest(w, msgInvalidOverride)

	case errors.Is(err, availability.ErrOverrideExists):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Override exists: master_id=%d", method, masterID)
		handlers.RespondConflict(w, msgOverrideExists)

	case errors.Is(err, availability.ErrOverrideNotFound):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Override not found: master_id=%d", method, masterID)
		handlers.RespondNotFound(w, msgOverrideNotFound)

	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Not found: master_id=%d", method, masterID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, access.ErrAccessDenied):
		h.logger.Warn("%s /salons/{id}/masters/{id}/availability-overrides - Access denied: master_id=%d", method, masterID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("%s /salons/{id}/masters/{id}/availability-overrides - Failed: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondInternalError(w)
	}
}
