package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/types"
)

type SubscriptionHandler struct {
	ledger service.LicenseService
	log    *logger.Logger
}

func NewSubscriptionHandler(ledger service.LicenseService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		ledger: ledger,
		log:    log,
	}
}

// @Summary Get the subscription summary
// @Description Seat usage and license costs of the tenant for a billing period (default current)
// @Tags Subscription
// @Produce json
// @Param period query string false "Billing period YYYY-MM"
// @Success 200 {object} dto.SubscriptionSummaryResponse
// @Router /subscription [get]
func (h *SubscriptionHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summary, err := h.ledger.GetSubscriptionSummary(ctx, types.GetTenantID(ctx), c.Query("period"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *SubscriptionHandler) GetSeats(c *gin.Context) {
	ctx := c.Request.Context()

	usage, err := h.ledger.GetSeatUsageDetails(ctx, types.GetTenantID(ctx))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SeatUsageResponse{
		CurrentSeats: usage.CurrentSeats,
		SeatLimit:    usage.SeatLimit,
		CanAddUser:   usage.CanAddUser(),
	})
}
