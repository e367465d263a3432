package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/anand05ms/Employee-tracker/internal/geo"
)

// Sample statuses mirror the commute lifecycle: ACTIVE while moving,
// REACHED inside the geofence, OFFLINE after check-out.
const (
	SampleActive  = "ACTIVE"
	SampleReached = "REACHED"
	SampleOffline = "OFFLINE"
)

// Sample is one raw position report. Samples are immutable and
// append-only; retention is this module's concern, not the engine's.
type Sample struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EmployeeID   uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	Location     geo.Point `gorm:"embedded" json:"location"`
	Address      string    `gorm:"column:address" json:"address"`
	Accuracy     *float64  `gorm:"column:accuracy" json:"accuracy,omitempty"`
	Speed        *float64  `gorm:"column:speed" json:"speed,omitempty"`
	Heading      *float64  `gorm:"column:heading" json:"heading,omitempty"`
	BatteryLevel *float64  `gorm:"column:battery_level" json:"battery_level,omitempty"`
	IsInOffice   bool      `gorm:"column:is_in_office" json:"is_in_office"`
	Status       string    `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Timestamp    time.Time `gorm:"column:timestamp;type:timestamptz;not null;index" json:"timestamp"`
}

func (Sample) TableName() string {
	return "location_samples"
}
