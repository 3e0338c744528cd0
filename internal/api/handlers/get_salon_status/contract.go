package get_salon_status

import (
	"context"

	getSalonStatus "github.com/m04kA/SalonBookingService/internal/usecase/get_salon_status"
)

type GetSalonStatusUseCase interface {
	Execute(ctx context.Context, req *getSalonStatus.Request) (*getSalonStatus.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
