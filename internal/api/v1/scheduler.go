package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/config"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/scheduler"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/types"
	"golang.org/x/time/rate"
)

// SchedulerControl is the surface of the recurring task scheduler exposed to admins
type SchedulerControl interface {
	Start() error
	Stop(ctx context.Context) error
	Status() scheduler.Status
	TriggerNow(ctx context.Context) (*service.TickResult, error)
}

type SchedulerHandler struct {
	scheduler SchedulerControl
	limiter   *rate.Limiter
	log       *logger.Logger
}

func NewSchedulerHandler(cfg *config.Configuration, scheduler SchedulerControl, log *logger.Logger) *SchedulerHandler {
	perMinute := cfg.Scheduler.TriggerRatePerMinute
	if perMinute < 1 {
		perMinute = 1
	}

	return &SchedulerHandler{
		scheduler: scheduler,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		log:       log,
	}
}

// @Summary Scheduler status
// @Tags Admin
// @Produce json
// @Success 200 {object} scheduler.Status
// @Router /admin/scheduler/status [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

func (h *SchedulerHandler) Start(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("scheduler started from admin api", "request_id", types.GetRequestID(c.Request.Context()))
	c.JSON(http.StatusOK, h.scheduler.Status())
}

func (h *SchedulerHandler) Stop(c *gin.Context) {
	if err := h.scheduler.Stop(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("scheduler stopped from admin api", "request_id", types.GetRequestID(c.Request.Context()))
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// @Summary Trigger a scheduler tick
// @Description Runs one tick synchronously and returns its result. Rate limited.
// @Tags Admin
// @Produce json
// @Success 200 {object} service.TickResult
// @Failure 429 {object} ierr.ErrorResponse
// @Router /admin/scheduler/trigger [post]
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	if !h.limiter.Allow() {
		c.Error(ierr.NewError("scheduler trigger rate limited").
			WithHint("The scheduler was triggered recently, try again shortly").
			Mark(ierr.ErrRateLimited))
		return
	}

	result, err := h.scheduler.TriggerNow(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
