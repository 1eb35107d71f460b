package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestLicensingPricing(t *testing.T) {
	p, err := LicensingConfig{BasePrice: "2500", SeatPrice: "500.50", Currency: "nok"}.Pricing()
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2500).Equal(p.BasePrice))
	assert.True(t, decimal.RequireFromString("500.50").Equal(p.SeatPrice))
	assert.Equal(t, "NOK", p.Currency)
	assert.Equal(t, 5, p.DefaultEmployeeLimit)

	_, err = LicensingConfig{BasePrice: "abc", SeatPrice: "500", Currency: "NOK"}.Pricing()
	assert.Error(t, err)

	_, err = LicensingConfig{BasePrice: "2500", SeatPrice: "-1", Currency: "NOK"}.Pricing()
	assert.Error(t, err)
}

func TestValidateRejectsBadScheduler(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Scheduler.Workers = 0
	assert.Error(t, cfg.Validate())
}
