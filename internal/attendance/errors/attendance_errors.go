package attendanceerrors

import (
	"net/http"

	"github.com/anand05ms/Employee-tracker/internal/shared/apperror"
)

var (
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"You are already checked in for today",
		http.StatusConflict,
	)
	ErrNotCheckedIn = apperror.New(
		apperror.CodeInvalidState,
		"You are not checked in today",
		http.StatusBadRequest,
	)
	ErrInvalidCoordinates = apperror.New(
		apperror.CodeInvalidInput,
		"Latitude or longitude is out of range",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
)
