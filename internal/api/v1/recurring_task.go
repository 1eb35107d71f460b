package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/dto"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/types"
)

type RecurringTaskHandler struct {
	service service.RecurringTaskService
	log     *logger.Logger
}

func NewRecurringTaskHandler(service service.RecurringTaskService, log *logger.Logger) *RecurringTaskHandler {
	return &RecurringTaskHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a recurring task
// @Description Frequency accepts English or Norwegian names; unknown values fall back to monthly
// @Tags RecurringTasks
// @Accept json
// @Produce json
// @Param template body dto.CreateRecurringTaskRequest true "Template"
// @Success 201 {object} dto.RecurringTaskResponse
// @Router /recurring-tasks [post]
func (h *RecurringTaskHandler) CreateRecurringTask(c *gin.Context) {
	var req dto.CreateRecurringTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *RecurringTaskHandler) GetRecurringTask(c *gin.Context) {
	resp, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringTaskHandler) ListRecurringTasks(c *gin.Context) {
	var filter types.RecurringTaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListTemplates(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RecurringTaskHandler) UpdateRecurringTask(c *gin.Context) {
	var req dto.UpdateRecurringTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateTemplate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
