package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Query params: masterId, clientId, status, from, to (RFC 3339), includeInactive
func ToServiceRequest(salonID, userID int64, query url.Values) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{
		SalonID: salonID,
		UserID:  userID,
	}

	var err error
	if req.MasterID, err = handlers.ParseOptionalID(query.Get("masterId")); err != nil {
		return nil, fmt.Errorf("invalid masterId: %w", err)
	}
	if req.ClientID, err = handlers.ParseOptionalID(query.Get("clientId")); err != nil {
		return nil, fmt.Errorf("invalid clientId: %w", err)
	}
	if req.From, err = handlers.ParseOptionalTime(query.Get("from")); err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}
	if req.To, err = handlers.ParseOptionalTime(query.Get("to")); err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	// По умолчанию только активные
	if s := query.Get("includeInactive"); s != "" {
		includeInactive, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
