package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lengolf/timeclock-api/internal/dto"
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/service"
	appErrors "github.com/lengolf/timeclock-api/pkg/errors"
	"github.com/lengolf/timeclock-api/pkg/response"
)

// StaffHandler exposes roster management endpoints.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs the handler.
func NewStaffHandler(svc *service.StaffService) *StaffHandler {
	return &StaffHandler{service: svc}
}

// List godoc
// @Summary List roster members
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param active query bool false "Active filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	filter := models.StaffFilter{
		Search:    c.Query("search"),
		Page:      parseIntDefault(c.Query("page"), 1),
		PageSize:  parseIntDefault(c.Query("page_size"), 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}

	staff, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, staff, pagination)
}

// Get godoc
// @Summary Fetch one roster member
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be numeric"))
		return
	}

	staff, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, staff, nil)
}

// Create godoc
// @Summary Add a roster member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}

	staff, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, staff)
}

// Update godoc
// @Summary Update a roster member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param payload body dto.UpdateStaffRequest true "Staff changes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be numeric"))
		return
	}

	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}

	staff, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, staff, nil)
}

// Deactivate godoc
// @Summary Deactivate a roster member
// @Tags Staff
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /staff/{id} [delete]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be numeric"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
