package entity

import "time"

// RolloverState último día en que se avanzaron los contadores de un dispositivo.
type RolloverState struct {
	DeviceID         string
	LastRolloverDate *time.Time
	UpdatedAt        time.Time
}
