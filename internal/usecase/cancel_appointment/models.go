package cancel_appointment

// Request модель запроса на отмену записи
type Request struct {
	SalonID       int64   // ID салона
	AppointmentID int64   // ID записи
	UserID        int64   // ID пользователя из X-User-ID
	Reason        *string // причина отмены (опционально)
}
