package attendance

import (
	"time"

	"github.com/anand05ms/Employee-tracker/internal/history"
)

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	Address   string   `json:"address"`
	Accuracy  *float64 `json:"accuracy"`
}

type LocationUpdateRequest struct {
	Latitude     *float64 `json:"latitude" binding:"required,latitude"`
	Longitude    *float64 `json:"longitude" binding:"required,longitude"`
	Address      string   `json:"address"`
	Accuracy     *float64 `json:"accuracy"`
	Speed        *float64 `json:"speed"`
	Heading      *float64 `json:"heading"`
	BatteryLevel *float64 `json:"battery_level"`
}

type CheckOutRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	Address   string   `json:"address"`
}

type RecordResponse struct {
	ID                    string     `json:"id"`
	EmployeeID            string     `json:"employee_id"`
	Date                  string     `json:"date"`
	Status                string     `json:"status"`
	CheckInTime           string     `json:"check_in_time"`
	CheckInLatitude       float64    `json:"check_in_latitude"`
	CheckInLongitude      float64    `json:"check_in_longitude"`
	CheckInAddress        string     `json:"check_in_address"`
	CurrentLatitude       float64    `json:"current_latitude"`
	CurrentLongitude      float64    `json:"current_longitude"`
	ReachedOfficeTime     *string    `json:"reached_office_time,omitempty"`
	CheckOutTime          *string    `json:"check_out_time,omitempty"`
	CheckOutAddress       string     `json:"check_out_address,omitempty"`
	TotalHours            *float64   `json:"total_hours,omitempty"`
	DistanceFromOffice    float64    `json:"distance_from_office"`
	EstimatedTimeToOffice int        `json:"estimated_time_to_office"`
}

type CheckInResponse struct {
	Record             RecordResponse `json:"record"`
	Status             string         `json:"status"`
	IsInOffice         bool           `json:"is_in_office"`
	HasReachedOffice   bool           `json:"has_reached_office"`
	DistanceFromOffice float64        `json:"distance_from_office"`
	ETA                int            `json:"eta"`
}

type LocationUpdateResponse struct {
	Status             string  `json:"status"`
	IsInOffice         bool    `json:"is_in_office"`
	HasReachedOffice   bool    `json:"has_reached_office"`
	DistanceFromOffice float64 `json:"distance_from_office"`
}

type CheckOutResponse struct {
	Record     RecordResponse `json:"record"`
	Status     string         `json:"status"`
	TotalHours float64        `json:"total_hours"`
}

type StatusResponse struct {
	Record           *RecordResponse `json:"record,omitempty"`
	LatestLocation   *history.Sample `json:"latest_location,omitempty"`
	IsCheckedIn      bool            `json:"is_checked_in"`
	HasReachedOffice bool            `json:"has_reached_office"`
}

// ToResponse is exported because the dashboard renders the same record
// shape the employee endpoints do.
func (r Record) ToResponse() RecordResponse {
	resp := RecordResponse{
		ID:                    r.ID.String(),
		EmployeeID:            r.EmployeeID.String(),
		Date:                  r.Date,
		Status:                string(r.Status),
		CheckInTime:           r.CheckInTime.Format(time.RFC3339),
		CheckInLatitude:       r.CheckInLocation.Latitude,
		CheckInLongitude:      r.CheckInLocation.Longitude,
		CheckInAddress:        r.CheckInAddress,
		CurrentLatitude:       r.CurrentLocation.Latitude,
		CurrentLongitude:      r.CurrentLocation.Longitude,
		CheckOutAddress:       r.CheckOutAddress,
		TotalHours:            r.TotalHours,
		DistanceFromOffice:    r.DistanceFromOffice,
		EstimatedTimeToOffice: r.EstimatedTimeToOffice,
	}
	if r.ReachedOfficeTime != nil {
		v := r.ReachedOfficeTime.Format(time.RFC3339)
		resp.ReachedOfficeTime = &v
	}
	if r.CheckOutTime != nil {
		v := r.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &v
	}
	return resp
}
