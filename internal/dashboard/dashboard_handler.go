package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anand05ms/Employee-tracker/internal/shared/apperror"
	"github.com/anand05ms/Employee-tracker/internal/shared/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.service.ListEmployees(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, employees, nil)
}

func (h *Handler) CheckedIn(c *gin.Context) {
	entries, err := h.service.CheckedIn(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries, nil)
}

func (h *Handler) Reached(c *gin.Context) {
	entries, err := h.service.Reached(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries, nil)
}

func (h *Handler) CheckedOut(c *gin.Context) {
	entries, err := h.service.CheckedOut(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries, nil)
}

func (h *Handler) NotCheckedIn(c *gin.Context) {
	employees, err := h.service.NotCheckedIn(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, employees, nil)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats, nil)
}

func (h *Handler) EmployeeLocations(c *gin.Context) {
	employeeID := c.Param("id")

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = &t
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	samples, err := h.service.EmployeeLocations(c.Request.Context(), employeeID, from, to, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, samples, nil)
}

func (h *Handler) EmployeeAttendance(c *gin.Context) {
	employeeID := c.Param("id")
	from := c.Query("start_date")
	to := c.Query("end_date")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	records, err := h.service.EmployeeAttendance(c.Request.Context(), employeeID, from, to, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, records, nil)
}
