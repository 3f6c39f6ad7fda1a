package update_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	updateAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/update_appointment"
)

const (
	msgInvalidSalonID       = "некорректный ID салона"
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStartTime     = "некорректный формат времени начала, ожидается RFC 3339"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgInvalidInput         = "некорректные данные записи"
	msgForbidden            = "нет прав на изменение записи"
	msgSalonNotFound        = "салон не найден"
	msgNotFound             = "запись не найдена"
	msgMasterNotFound       = "мастер не найден"
	msgMasterInactive       = "мастер не принимает записи"
	msgMasterNotQualified   = "мастер не оказывает услугу записи"
	msgInvalidTransition    = "недопустимая смена статуса записи"
	msgPolicyViolation      = "время записи нарушает правила салона"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
)

type Handler struct {
	useCase UpdateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase UpdateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/salons/{salonId}/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	salonID, err := handlers.ParseID(vars["salonId"])
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid salon ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return
	}

	appointmentID, err := handlers.ParseID(vars["appointmentId"])
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /salons/{id}/appointments/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(salonID, appointmentID, userID)
	if err != nil {
		h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, updateAppointment.ErrSlotNotAvailable):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Slot not available: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, updateAppointment.ErrInvalidInput):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid input: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, access.ErrAccessDenied):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Access denied: appointment_id=%d, user_id=%d", appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, updateAppointment.ErrSalonNotFound):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Salon not found: salon_id=%d", salonID)
			handlers.RespondNotFound(w, msgSalonNotFound)

		case errors.Is(err, updateAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateAppointment.ErrMasterNotFound):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Master not found: appointment_id=%d, master_id=%v",
				appointmentID, req.MasterID)
			handlers.RespondNotFound(w, msgMasterNotFound)

		case errors.Is(err, updateAppointment.ErrMasterInactive):
			handlers.RespondBadRequest(w, msgMasterInactive)

		case errors.Is(err, updateAppointment.ErrMasterNotQualified):
			handlers.RespondBadRequest(w, msgMasterNotQualified)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Invalid transition: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidTransition)

		case errors.Is(err, domain.ErrPolicyViolation), errors.Is(err, domain.ErrInvalidInterval):
			h.logger.Warn("PUT /salons/{id}/appointments/{id} - Policy violation: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgPolicyViolation)

		default:
			h.logger.Error("PUT /salons/{id}/appointments/{id} - Failed to update appointment: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /salons/{id}/appointments/{id} - Appointment updated successfully: appointment_id=%d, status=%s",
		appointmentID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
