package update_appointment

import (
	"time"
)

// Request модель запроса на изменение записи
// Пустые поля не меняются
type Request struct {
	SalonID       int64      // ID салона
	AppointmentID int64      // ID записи
	UserID        int64      // ID пользователя из X-User-ID
	StartTime     *time.Time // новое начало (перенос)
	MasterID      *int64     // новый мастер (перенос)
	Status        *string    // новый статус
	Notes         *string    // новый комментарий
}

// IsReschedule запрос меняет время или мастера
func (r *Request) IsReschedule() bool {
	return r.StartTime != nil || r.MasterID != nil
}
