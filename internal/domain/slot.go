package domain

import "github.com/m04kA/SalonBookingService/pkg/types"

// Slot is a grid position offered to the client
type Slot struct {
	Time      types.TimeString `json:"time"`
	Available bool             `json:"available"`
}
