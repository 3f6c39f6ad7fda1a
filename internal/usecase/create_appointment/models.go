package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	SalonID   int64                // ID салона
	UserID    int64                // ID пользователя из X-User-ID
	ClientID  int64                // ID клиента салона
	ServiceID int64                // ID услуги
	MasterID  int64                // ID мастера
	StartTime time.Time            // начало записи (абсолютный момент)
	Notes     *string              // комментарий (опционально)
	Source    domain.BookingSource // канал записи; пусто - по роли пользователя
}
