package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/service"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
	"github.com/lengolf/timeclock-api/pkg/response"
)

// TimeClockHandler exposes kiosk punch and entry listing endpoints.
type TimeClockHandler struct {
	service  *service.TimeClockService
	location *time.Location
}

// NewTimeClockHandler constructs the handler.
func NewTimeClockHandler(svc *service.TimeClockService, location *time.Location) *TimeClockHandler {
	if location == nil {
		location = time.FixedZone("ICT", 7*60*60)
	}
	return &TimeClockHandler{service: svc, location: location}
}

// Punch godoc
// @Summary Record a clock event
// @Description Staff punch in or out with their PIN; the server decides the action
// @Tags TimeClock
// @Accept json
// @Produce json
// @Param payload body dto.PunchRequest true "Punch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /time-clock/punch [post]
func (h *TimeClockHandler) Punch(c *gin.Context) {
	var req dto.PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid punch payload"))
		return
	}

	res, err := h.service.Punch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// ListEntries godoc
// @Summary List raw clock events
// @Tags TimeClock
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param staff_id query int false "Staff ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /time-clock/entries [get]
func (h *TimeClockHandler) ListEntries(c *gin.Context) {
	filter, err := h.parseEntryFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, pagination, err := h.service.ListEntries(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.TimeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.NewTimeEntryResponse(entry, h.location))
	}

	response.JSON(c, http.StatusOK, out, pagination)
}

// Status godoc
// @Summary Open shift status for a staff member
// @Tags TimeClock
// @Produce json
// @Security BearerAuth
// @Param staffId path int true "Staff ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /time-clock/status/{staffId} [get]
func (h *TimeClockHandler) Status(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staffId"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "staffId must be numeric"))
		return
	}

	res, err := h.service.Status(c.Request.Context(), staffID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

func (h *TimeClockHandler) parseEntryFilter(c *gin.Context) (models.TimeEntryFilter, error) {
	filter := models.TimeEntryFilter{
		Page:      parseIntDefault(c.Query("page"), 1),
		PageSize:  parseIntDefault(c.Query("page_size"), 100),
		SortOrder: c.Query("sort_order"),
	}

	if raw := c.Query("staff_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "staff_id must be numeric")
		}
		filter.StaffID = &id
	}
	if raw := c.Query("start_date"); raw != "" {
		ts, err := time.ParseInLocation("2006-01-02", raw, h.location)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		filter.StartDate = &ts
	}
	if raw := c.Query("end_date"); raw != "" {
		ts, err := time.ParseInLocation("2006-01-02", raw, h.location)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		// End date is inclusive; the filter bound is the start of the
		// following day, exclusive.
		endExclusive := ts.Add(24 * time.Hour)
		filter.EndDate = &endExclusive
	}
	return filter, nil
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
