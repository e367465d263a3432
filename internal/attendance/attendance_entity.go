package attendance

import (
	"time"

	"github.com/google/uuid"

	"github.com/anand05ms/Employee-tracker/internal/geo"
)

type Status string

const (
	StatusCheckedIn     Status = "CHECKED_IN"
	StatusReachedOffice Status = "REACHED_OFFICE"
	StatusCheckedOut    Status = "CHECKED_OUT"
)

// rank orders statuses along the only legal path. Transitions never move
// backward; CHECKED_IN may jump straight to CHECKED_OUT.
func (s Status) rank() int {
	switch s {
	case StatusCheckedIn:
		return 1
	case StatusReachedOffice:
		return 2
	case StatusCheckedOut:
		return 3
	default:
		return 0
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	return next.rank() > s.rank()
}

// Record is one employee's attendance for one calendar day. The day key is
// fixed at check-in and never recomputed, so a post-midnight check-out
// still closes the record it belongs to. Once Status is CHECKED_OUT the
// record is terminal.
type Record struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EmployeeID            uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index" json:"employee_id"`
	Date                  string     `gorm:"column:attendance_date;type:date;not null;index" json:"date"`
	Status                Status     `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CheckInTime           time.Time  `gorm:"column:check_in_time;type:timestamptz;not null" json:"check_in_time"`
	CheckInLocation       geo.Point  `gorm:"embedded;embeddedPrefix:check_in_" json:"check_in_location"`
	CheckInAddress        string     `gorm:"column:check_in_address" json:"check_in_address"`
	CurrentLocation       geo.Point  `gorm:"embedded;embeddedPrefix:current_" json:"current_location"`
	ReachedOfficeTime     *time.Time `gorm:"column:reached_office_time;type:timestamptz" json:"reached_office_time,omitempty"`
	CheckOutTime          *time.Time `gorm:"column:check_out_time;type:timestamptz" json:"check_out_time,omitempty"`
	CheckOutLocation      geo.Point  `gorm:"embedded;embeddedPrefix:check_out_" json:"check_out_location"`
	CheckOutAddress       string     `gorm:"column:check_out_address" json:"check_out_address,omitempty"`
	TotalHours            *float64   `gorm:"column:total_hours" json:"total_hours,omitempty"`
	DistanceFromOffice    float64    `gorm:"column:distance_from_office" json:"distance_from_office"`
	EstimatedTimeToOffice int        `gorm:"column:estimated_time_to_office" json:"estimated_time_to_office"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"-"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"-"`
}

func (Record) TableName() string {
	return "attendance_records"
}

// Open reports whether the record can still accept events.
func (r *Record) Open() bool {
	return r.Status != StatusCheckedOut
}
