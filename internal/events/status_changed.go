package events

import "time"

const StatusChangedTopic = "attendance.status.v1"

// Event types carried by StatusChangedEvent. LOCATION_UPDATE is a
// lower-priority refresh; the other three mark state transitions.
const (
	TypeCheckedIn      = "CHECKED_IN"
	TypeReachedOffice  = "REACHED_OFFICE"
	TypeCheckedOut     = "CHECKED_OUT"
	TypeLocationUpdate = "LOCATION_UPDATE"
)

type StatusChangedEvent struct {
	Type               string     `json:"type"`
	EmployeeID         string     `json:"employee_id"`
	EmployeeName       string     `json:"employee_name,omitempty"`
	EmployeeDepartment string     `json:"employee_department,omitempty"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Address            string     `json:"address,omitempty"`
	IsInOffice         bool       `json:"is_in_office"`
	HasReachedOffice   bool       `json:"has_reached_office"`
	DistanceFromOffice float64    `json:"distance_from_office"`
	Accuracy           *float64   `json:"accuracy,omitempty"`
	Speed              *float64   `json:"speed,omitempty"`
	BatteryLevel       *float64   `json:"battery_level,omitempty"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime       *time.Time `json:"check_out_time,omitempty"`
	TotalHours         *float64   `json:"total_hours,omitempty"`
	Timestamp          time.Time  `json:"timestamp"`
}
