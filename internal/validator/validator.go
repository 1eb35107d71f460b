package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// NewValidator builds the shared validator with the domain tags registered:
//   - billing_period: "YYYY-MM"
//   - task_status: any English or Norwegian task status name
func NewValidator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("billing_period", func(fl validator.FieldLevel) bool {
			_, err := types.ParseBillingPeriod(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
			_, err := types.ParseTaskStatus(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func GetValidator() *validator.Validate {
	return NewValidator()
}

func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
