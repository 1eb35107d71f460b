package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/kontorapp/kontor/internal/errors"
)

// SeatLimitErrorCode is the error code clients match on when a tenant is out of seats
const SeatLimitErrorCode = "SEAT_LIMIT_EXCEEDED"

// SeatLimitResponse is the 403 body returned when a licensing flow hits the seat limit
type SeatLimitResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Details SeatLimitDetails `json:"details"`
}

type SeatLimitDetails struct {
	CurrentSeats int `json:"currentSeats"`
	SeatLimit    int `json:"seatLimit"`
}

// ErrorHandler middleware handles error responses
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		details := ierr.ReportableDetails(err)

		if ierr.IsSeatLimitExceeded(err) {
			c.JSON(http.StatusForbidden, SeatLimitResponse{
				Error:   SeatLimitErrorCode,
				Message: ierr.DisplayMessage(err),
				Details: SeatLimitDetails{
					CurrentSeats: intDetail(details, "currentSeats"),
					SeatLimit:    intDetail(details, "seatLimit"),
				},
			})
			return
		}

		c.JSON(ierr.HTTPStatusFromErr(err), ierr.ErrorResponse{
			Success: false,
			Error: ierr.ErrorDetail{
				Display: ierr.DisplayMessage(err),
				Details: details,
			},
		})
	}
}

// details come back from JSON, so numbers are float64
func intDetail(details map[string]any, key string) int {
	switch v := details[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
