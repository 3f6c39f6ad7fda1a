package create_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	createAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_appointment"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStartTime   = "некорректный формат времени начала, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные записи"
	msgForbidden          = "нет прав на создание этой записи"
	msgSalonNotFound      = "салон не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgMasterNotFound     = "мастер не найден"
	msgClientNotFound     = "клиент не найден"
	msgServiceInactive    = "услуга недоступна для записи"
	msgMasterInactive     = "мастер не принимает записи"
	msgMasterNotQualified = "мастер не оказывает выбранную услугу"
	msgClientBlocked      = "клиент заблокирован в салоне"
	msgPolicyViolation    = "время записи нарушает правила салона"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/salons/{salonId}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	salonID, err := handlers.ParseID(mux.Vars(r)["salonId"])
	if err != nil {
		h.logger.Warn("POST /salons/{id}/appointments - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /salons/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salons/{id}/appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(salonID, userID)
	if err != nil {
		h.logger.Warn("POST /salons/{id}/appointments - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /salons/{id}/appointments - Slot not available: salon_id=%d, master_id=%d, start=%s",
				salonID, req.MasterID, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /salons/{id}/appointments - Invalid input: salon_id=%d, error=%v", salonID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, access.ErrAccessDenied):
			h.logger.Warn("POST /salons/{id}/appointments - Access denied: salon_id=%d, user_id=%d", salonID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createAppointment.ErrSalonNotFound):
			h.logger.Warn("POST /salons/{id}/appointments - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("POST /salons/{id}/appointments - Service not found: salon_id=%d, service_id=%d", salonID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrMasterNotFound):
			h.logger.Warn("POST /salons/{id}/appointments - Master not found: salon_id=%d, master_id=%d", salonID, req.MasterID)
			handlers.RespondNotFound(w, msgMasterNotFound)

		case errors.Is(err, createAppointment.ErrClientNotFound):
			h.logger.Warn("POST /salons/{id}/appointments - Client not found: salon_id=%d, client_id=%d", salonID, useCaseReq.ClientID)
			handlers.RespondNotFound(w, msgClientNotFound)

		case errors.Is(err, createAppointment.ErrServiceInactive):
			h.logger.Warn("POST /salons/{id}/appointments - Service inactive: salon_id=%d, service_id=%d", salonID, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createAppointment.ErrMasterInactive):
			h.logger.Warn("POST /salons/{id}/appointments - Master inactive: salon_id=%d, master_id=%d", salonID, req.MasterID)
			handlers.RespondBadRequest(w, msgMasterInactive)

		case errors.Is(err, createAppointment.ErrMasterNotQualified):
			h.logger.Warn("POST /salons/{id}/appointments - Master not qualified: salon_id=%d, master_id=%d, service_id=%d",
				salonID, req.MasterID, req.ServiceID)
			handlers.RespondBadRequest(w, msgMasterNotQualified)

		case errors.Is(err, createAppointment.ErrClientBlocked):
			h.logger.Warn("POST /salons/{id}/appointments - Client blocked: salon_id=%d, client_id=%d", salonID, useCaseReq.ClientID)
			handlers.RespondForbidden(w, msgClientBlocked)

		case errors.Is(err, domain.ErrPolicyViolation), errors.Is(err, domain.ErrInvalidInterval):
			h.logger.Warn("POST /salons/{id}/appointments - Policy violation: salon_id=%d, start=%s, error=%v",
				salonID, req.StartTime, err)
			handlers.RespondBadRequest(w, msgPolicyViolation)

		default:
			h.logger.Error("POST /salons/{id}/appointments - Failed to create appointment: salon_id=%d, user_id=%d, error=%v",
				salonID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /salons/{id}/appointments - Appointment created successfully: appointment_id=%d, salon_id=%d, master_id=%d",
		result.ID, salonID, result.MasterID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
