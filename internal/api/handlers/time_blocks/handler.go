package time_blocks

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks"
)

const (
	msgInvalidSalonID     = "некорректный ID салона"
	msgInvalidMasterID    = "некорректный ID мастера"
	msgInvalidBlockID     = "некорректный ID блока"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC 3339"
	msgMissingPeriod      = "параметры from и to обязательны"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidBlock       = "некорректные данные блока"
	msgBlockNotFound      = "блок времени не найден"
	msgNotFound           = "салон или мастер не найден"
	msgForbidden          = "нет прав на изменение расписания мастера"
	msgOverlapsAppt       = "блок пересекает активную запись"
	msgOverlapsBlock      = "блок пересекает другой блок"
)

type Handler struct {
	service TimeBlockService
	logger  Logger
}

func NewHandler(service TimeBlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/salons/{salonId}/masters/{masterId}/time-blocks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "POST")
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /salons/{id}/masters/{id}/time-blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateTimeBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /salons/{id}/masters/{id}/time-blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(salonID, masterID, userID)
	if err != nil {
		h.logger.Warn("POST /salons/{id}/masters/{id}/time-blocks - Invalid time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.service.Create(r.Context(), serviceReq)
	if err != nil {
		h.respondError(w, "POST", err, masterID)
		return
	}

	h.logger.Info("POST /salons/{id}/masters/{id}/time-blocks - Time block created: block_id=%d, master_id=%d, type=%s",
		result.ID, masterID, result.Type)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleList GET /api/v1/salons/{salonId}/masters/{masterId}/time-blocks?from&to
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "GET")
	if !ok {
		return
	}

	query := r.URL.Query()
	if query.Get("from") == "" || query.Get("to") == "" {
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}
	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}
	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.service.List(r.Context(), salonID, masterID, from, to)
	if err != nil {
		h.respondError(w, "GET", err, masterID)
		return
	}

	h.logger.Info("GET /salons/{id}/masters/{id}/time-blocks - Time blocks retrieved: master_id=%d, count=%d",
		masterID, len(result.TimeBlocks))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDelete DELETE /api/v1/salons/{salonId}/masters/{masterId}/time-blocks/{blockId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	salonID, masterID, ok := h.parsePath(w, r, "DELETE")
	if !ok {
		return
	}

	blockID, err := handlers.ParseID(mux.Vars(r)["blockId"])
	if err != nil {
		h.logger.Warn("DELETE /salons/{id}/masters/{id}/time-blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.Delete(r.Context(), salonID, masterID, blockID, userID); err != nil {
		h.respondError(w, "DELETE", err, masterID)
		return
	}

	h.logger.Info("DELETE /salons/{id}/masters/{id}/time-blocks/{id} - Time block deleted: block_id=%d, master_id=%d",
		blockID, masterID)
	handlers.RespondNoContent(w)
}

func (h *Handler) parsePath(w http.ResponseWriter, r *http.Request, method string) (int64, int64, bool) {
	vars := mux.Vars(r)

	salonID, err := handlers.ParseID(vars["salonId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Invalid salon ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidSalonID)
		return 0, 0, false
	}

	masterID, err := handlers.ParseID(vars["masterId"])
	if err != nil {
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Invalid master ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidMasterID)
		return 0, 0, false
	}

	return salonID, masterID, true
}

func (h *Handler) respondError(w http.ResponseWriter, method string, err error, masterID int64) {
	switch {
	case errors.Is(err, timeblocks.ErrInvalidInput), errors.Is(err, domain.ErrInvalidInterval):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Invalid block: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondBadRequest(w, msgInvalidBlock)

	case errors.Is(err, timeblocks.ErrOverlapsAppointment):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Overlaps appointment: master_id=%d", method, masterID)
		handlers.RespondConflict(w, msgOverlapsAppt)

	case errors.Is(err, timeblocks.ErrOverlapsBlock):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Overlaps block: master_id=%d", method, masterID)
		handlers.RespondConflict(w, msgOverlapsBlock)

	case errors.Is(err, timeblocks.ErrTimeBlockNotFound):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Block not found: master_id=%d", method, masterID)
		handlers.RespondNotFound(w, msgBlockNotFound)

	case errors.Is(err, domain.ErrNotFound):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Not found: master_id=%d", method, masterID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, access.ErrAccessDenied):
		h.logger.Warn("%s /salons/{id}/masters/{id}/time-blocks - Access denied: master_id=%d", method, masterID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("%s /salons/{id}/masters/{id}/time-blocks - Failed: master_id=%d, error=%v", method, masterID, err)
		handlers.RespondInternalError(w)
	}
}
