package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/service"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
	"github.com/lengolf/timeclock-api/pkg/response"
)

// ReportHandler exposes shift and analytics report endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Shifts godoc
// @Summary Work shift report
// @Description Pairs clock events in the window into work shifts
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param staff_id query int false "Staff ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /time-clock/report/shifts [get]
func (h *ReportHandler) Shifts(c *gin.Context) {
	query, err := parseReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, cached, err := h.service.ShiftReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"cache_hit": cached})
}

// Analytics godoc
// @Summary Per-staff analytics report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param staff_id query int false "Staff ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /time-clock/report/analytics [get]
func (h *ReportHandler) Analytics(c *gin.Context) {
	query, err := parseReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, cached, err := h.service.AnalyticsReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{"cache_hit": cached})
}

func parseReportQuery(c *gin.Context) (dto.ReportQuery, error) {
	query := dto.ReportQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	if query.StartDate == "" || query.EndDate == "" {
		return query, appErrors.Clone(appErrors.ErrValidation, "start_date and end_date are required")
	}
	if raw := c.Query("staff_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "staff_id must be numeric")
		}
		query.StaffID = &id
	}
	return query, nil
}
