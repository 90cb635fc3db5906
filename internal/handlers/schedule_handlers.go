package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/careops/dietary-golang/internal/scheduler"
	"github.com/gin-gonic/gin"
)

//
// --- Menu Scheduling Handlers ---
//

// ScheduleInput defines the JSON for POST /v1/schedule. Selections map meal
// slots ("Breakfast"/"Lunch"/"Dinner") to the chosen menu plus optional
// per-ingredient quantity overrides.
type ScheduleInput struct {
	Date       string                         `json:"date" binding:"required"`
	Selections map[string]scheduler.Selection `json:"selections"`
	Notes      string                         `json:"notes"`
}

// ScheduleMenus is the handler for POST /v1/schedule
func (h *Handlers) ScheduleMenus(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	day, ok := parseDate(input.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format (use YYYY-MM-DD)"})
		return
	}

	// 2. --- Run the scheduling transaction ---
	summary, err := h.Scheduler.ScheduleMenus(c, callerCapabilities(c), day, input.Selections, input.Notes)
	if err != nil {
		h.respondSchedulingError(c, err)
		return
	}

	// 3. --- Report what was deducted ---
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Menus scheduled successfully",
		"date":       day.Format("2006-01-02"),
		"deductions": summary,
	})
}

// respondSchedulingError maps the engine's error taxonomy onto HTTP statuses.
// Insufficient stock carries the full shortage list so the caller can fix
// every problem before resubmitting.
func (h *Handlers) respondSchedulingError(c *gin.Context, err error) {
	var validationErr *scheduler.ValidationError
	var integrityErr *scheduler.DataIntegrityError
	var stockErr *scheduler.InsufficientStockError

	switch {
	case errors.Is(err, scheduler.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, scheduler.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &integrityErr):
		c.JSON(http.StatusConflict, gin.H{"error": integrityErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Insufficient stock for the requested menus",
			"shortages": stockErr.Shortages,
		})
	case errors.Is(err, scheduler.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scheduling failed"})
	}
}

// GetDaySchedule is the handler for GET /v1/schedule/day?date=YYYY-MM-DD
func (h *Handlers) GetDaySchedule(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	day, ok := parseDate(dateStr)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format (use YYYY-MM-DD)"})
		return
	}

	entries, err := h.Scheduler.GetSchedule(c, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    day.Format("2006-01-02"),
		"entries": entries,
	})
}

// GetWeekSchedule is the handler for GET /v1/schedule/week?offset=0
// offset 0 is the week containing today; negative offsets look back.
func (h *Handlers) GetWeekSchedule(c *gin.Context) {
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return
		}
		offset = parsed
	}

	week, err := h.Scheduler.GetWeek(c, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load week"})
		return
	}

	c.JSON(http.StatusOK, week)
}

// DeleteSchedule is the handler for DELETE /v1/schedule/:id
//
// The deducted inventory is NOT restored; the schedule record is bookkeeping,
// not a reservation.
func (h *Handlers) DeleteSchedule(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	if err := h.Scheduler.DeleteSchedule(c, callerCapabilities(c), scheduleID); err != nil {
		h.respondSchedulingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}
