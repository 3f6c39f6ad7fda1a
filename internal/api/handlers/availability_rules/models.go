package availability_rules

import (
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
)

// SetRulesRequest HTTP request model; правила перезаписываются по дням недели
type SetRulesRequest struct {
	Rules []models.RuleInput `json:"rules"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *SetRulesRequest) ToServiceRequest(salonID, masterID, userID int64) *models.SetRulesRequest {
	return &models.SetRulesRequest{
		SalonID:  salonID,
		MasterID: masterID,
		UserID:   userID,
		Rules:    r.Rules,
	}
}
