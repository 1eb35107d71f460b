package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/dto"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
)

type EmployeeHandler struct {
	service service.EmployeeService
	log     *logger.Logger
}

func NewEmployeeHandler(
	service service.EmployeeService,
	log *logger.Logger,
) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create an employee
// @Description Creates a user in the tenant. A licensed employee takes a seat and is rejected with 403 SEAT_LIMIT_EXCEEDED when none is free.
// @Tags Employees
// @Accept json
// @Produce json
// @Param employee body dto.CreateEmployeeRequest true "Employee"
// @Success 201 {object} dto.EmployeeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} middleware.SeatLimitResponse
// @Router /employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	resp, err := h.service.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Toggle an employee license
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param license body dto.ToggleLicenseRequest true "License"
// @Success 200 {object} dto.EmployeeResponse
// @Failure 403 {object} middleware.SeatLimitResponse
// @Router /employees/{id}/license [put]
func (h *EmployeeHandler) ToggleLicense(c *gin.Context) {
	var req dto.ToggleLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ToggleLicense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
