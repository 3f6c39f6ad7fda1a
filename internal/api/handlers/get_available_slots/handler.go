package get_available_slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgMissingServiceID   = "ID услуги обязателен"
	msgInvalidMasterID    = "некорректный ID мастера"
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange       = "некорректный диапазон дат"
	msgSalonNotFound      = "салон не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgMasterNotFound     = "мастер не найден"
	msgMasterNotQualified = "мастер не оказывает выбранную услугу"
	msgServiceInactive    = "услуга недоступна для записи"

	// contentTypeNDJSON построчная выдача дней по мере расчёта
	contentTypeNDJSON = "application/x-ndjson"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/salons/{salonId}/available-slots
// Query params: serviceId (required), masterId, date (required, YYYY-MM-DD), dateTo
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.ParseID(mux.Vars(r)["salonId"])
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	query := r.URL.Query()

	serviceIDStr := query.Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /salons/{id}/available-slots - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	serviceID, err := handlers.ParseID(serviceIDStr)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	masterID, err := handlers.ParseOptionalID(query.Get("masterId"))
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid master ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMasterID)
		return
	}

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /salons/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	var dateTo *time.Time
	if s := query.Get("dateTo"); s != "" {
		d, err := handlers.ParseDate(s)
		if err != nil {
			h.logger.Warn("GET /salons/{id}/available-slots - Invalid dateTo format: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		dateTo = &d
	}

	useCaseReq := ToUseCaseRequest(salonID, serviceID, masterID, date, dateTo)

	if strings.Contains(r.Header.Get("Accept"), contentTypeNDJSON) {
		h.stream(w, r, useCaseReq)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondError(w, err, salonID, serviceID)
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /salons/{id}/available-slots - Slots retrieved successfully: salon_id=%d, service_id=%d, days=%d",
		salonID, serviceID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, response)
}

// stream отдаёт по строке JSON на день; ошибка после начала ответа обрывает поток
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, req *getAvailableSlots.Request) {
	days, err := h.useCase.Stream(r.Context(), req)
	if err != nil {
		h.respondError(w, err, req.SalonID, req.ServiceID)
		return
	}

	w.Header().Set("Content-Type", contentTypeNDJSON)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	count := 0
	for day, err := range days {
		if err != nil {
			h.logger.Error("GET /salons/{id}/available-slots - Stream aborted: salon_id=%d, service_id=%d, days_sent=%d, error=%v",
				req.SalonID, req.ServiceID, count, err)
			return
		}
		if err := enc.Encode(FromDaySlots(day)); err != nil {
			h.logger.Warn("GET /salons/{id}/available-slots - Client went away: salon_id=%d, error=%v", req.SalonID, err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		count++
	}

	h.logger.Info("GET /salons/{id}/available-slots - Slots streamed: salon_id=%d, service_id=%d, days=%d",
		req.SalonID, req.ServiceID, count)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, salonID, serviceID int64) {
	switch {
	case errors.Is(err, getAvailableSlots.ErrInvalidInput):
		h.logger.Warn("GET /salons/{id}/available-slots - Invalid range: salon_id=%d, error=%v", salonID, err)
		handlers.RespondBadRequest(w, msgInvalidRange)

	case errors.Is(err, getAvailableSlots.ErrSalonNotFound):
		h.logger.Warn("GET /salons/{id}/available-slots - Salon not found: salon_id=%d", salonID)
		handlers.RespondNotFound(w, msgSalonNotFound)

	case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
		h.logger.Warn("GET /salons/{id}/available-slots - Service not found: salon_id=%d, service_id=%d", salonID, serviceID)
		handlers.RespondNotFound(w, msgServiceNotFound)

	case errors.Is(err, getAvailableSlots.ErrMasterNotFound):
		h.logger.Warn("GET /salons/{id}/available-slots - Master not found: salon_id=%d", salonID)
		handlers.RespondNotFound(w, msgMasterNotFound)

	case errors.Is(err, getAvailableSlots.ErrMasterNotQualified):
		h.logger.Warn("GET /salons/{id}/available-slots - Master not qualified: salon_id=%d, service_id=%d", salonID, serviceID)
		handlers.RespondBadRequest(w, msgMasterNotQualified)

	case errors.Is(err, getAvailableSlots.ErrServiceInactive):
		h.logger.Warn("GET /salons/{id}/available-slots - Service inactive: salon_id=%d, service_id=%d", salonID, serviceID)
		handlers.RespondBadRequest(w, msgServiceInactive)

	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("GET /salons/{id}/available-slots - Not found: salon_id=%d, error=%v", salonID, err)
		handlers.RespondNotFound(w, msgSalonNotFound)

	default:
		h.logger.Error("GET /salons/{id}/available-slots - Failed to get slots: salon_id=%d, service_id=%d, error=%v",
			salonID, serviceID, err)
		handlers.RespondInternalError(w)
	}
}
