package dashboard

import (
	"github.com/anand05ms/Employee-tracker/internal/attendance"
	"github.com/anand05ms/Employee-tracker/internal/directory"
	"github.com/anand05ms/Employee-tracker/internal/history"
)

// EmployeeStatusEntry pairs an employee with their latest attendance
// record and last known position, the shape admin dashboards render.
type EmployeeStatusEntry struct {
	Employee   directory.Employee         `json:"employee"`
	Attendance *attendance.RecordResponse `json:"attendance,omitempty"`
	Location   *history.Sample            `json:"location,omitempty"`
}

type Stats struct {
	TotalEmployees  int    `json:"total_employees"`
	CheckedInToday  int    `json:"checked_in_today"`
	InOfficeCount   int    `json:"in_office_count"`
	CheckedOutToday int    `json:"checked_out_today"`
	NotCheckedIn    int    `json:"not_checked_in"`
	Date            string `json:"date"`
}
