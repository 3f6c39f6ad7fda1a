package cancel_appointment

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	cancelAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment"
)

type CancelAppointmentUseCase interface {
	Execute(ctx context.Context, req *cancelAppointment.Request) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
