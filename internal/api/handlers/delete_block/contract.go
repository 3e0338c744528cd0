package delete_block

import (
	"context"

	"github.com/m04kA/SalonBookingService/internal/service/blocks/models"
)

type BlockService interface {
	Delete(ctx context.Context, req *models.DeleteBlockRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
