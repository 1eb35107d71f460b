package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
	"github.com/samber/lo"
)

// LicensingHandler handles billing period cron jobs
type LicensingHandler struct {
	ledger  service.LicenseService
	tenants tenant.Repository
	clock   types.Clock
	logger  *logger.Logger
}

func NewLicensingHandler(
	ledger service.LicenseService,
	tenants tenant.Repository,
	clock types.Clock,
	logger *logger.Logger,
) *LicensingHandler {
	return &LicensingHandler{
		ledger:  ledger,
		tenants: tenants,
		clock:   clock,
		logger:  logger,
	}
}

// RollOver opens the billing period (default: current) for the listed tenants,
// or for every tenant when none are listed. A failing tenant does not stop the
// others; it is reported in the response.
// @Summary Roll over the licensing billing period
// @Tags Cron
// @Accept json
// @Produce json
// @Param body body dto.RollOverRequest false "Period and tenants"
// @Success 200 {object} dto.RollOverResponse
// @Router /cron/licensing/rollover [post]
func (h *LicensingHandler) RollOver(c *gin.Context) {
	var req dto.RollOverRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}
	if err := validator.ValidateRequest(&req); err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	period := req.Period
	if period == "" {
		period = types.CurrentBillingPeriod(h.clock.Now())
	}

	tenantIDs := lo.Uniq(req.TenantIDs)
	if len(tenantIDs) == 0 {
		tenants, err := h.tenants.List(ctx)
		if err != nil {
			c.Error(err)
			return
		}
		tenantIDs = lo.Map(tenants, func(t *tenant.Tenant, _ int) string { return t.ID })
	}

	h.logger.Infow("starting licensing rollover", "period", period, "tenants", len(tenantIDs))

	resp := dto.RollOverResponse{
		Period:    period,
		Succeeded: []string{},
		Failed:    map[string]string{},
	}
	for _, tenantID := range tenantIDs {
		tenantCtx := types.WithTenantID(ctx, tenantID)
		if err := h.ledger.RollOverPeriod(tenantCtx, tenantID, period); err != nil {
			h.logger.Errorw("licensing rollover failed",
				"tenant_id", tenantID,
				"period", period,
				"error", err,
			)
			resp.Failed[tenantID] = ierr.DisplayMessage(err)
			continue
		}
		resp.Succeeded = append(resp.Succeeded, tenantID)
	}

	h.logger.Infow("finished licensing rollover",
		"period", period,
		"succeeded", len(resp.Succeeded),
		"failed", len(resp.Failed),
	)
	c.JSON(http.StatusOK, resp)
}
