package clientservice

// ClientInfo модель клиента салона из ClientService
type ClientInfo struct {
	ID        int64   `json:"id"`
	SalonID   int64   `json:"salon_id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	IsBlocked bool    `json:"is_blocked"`
}

// ErrorResponse модель ошибки от ClientService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Admission решение о допуске клиента к записи
type Admission int

const (
	AdmissionAllowed    Admission = iota
	AdmissionBlocked              // клиент заблокирован салоном
	AdmissionDenied               // клиента нет в салоне
	AdmissionUnverified           // ClientService недоступен, запись принимается без проверки
)

func (a Admission) String() string {
	switch a {
	case AdmissionAllowed:
		return "allowed"
	case AdmissionBlocked:
		return "blocked"
	case AdmissionDenied:
		return "denied"
	case AdmissionUnverified:
		return "unverified"
	}
	return "unknown"
}
