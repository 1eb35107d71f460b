package dto

import (
	"github.com/shopspring/decimal"
)

// SubscriptionSummaryResponse is the subscription display of a tenant for one period.
// Money figures come from the period's draft invoice when one exists, otherwise
// they are projected from the live seat count and Status is "estimated".
type SubscriptionSummaryResponse struct {
	Period        string              `json:"period"`
	Plan          string              `json:"plan"`
	SeatUsage     int                 `json:"seatUsage"`
	EmployeeLimit int                 `json:"employeeLimit"`
	Status        string              `json:"status"`
	Currency      string              `json:"currency"`
	InvoiceID     *string             `json:"invoiceId,omitempty"`
	MainLicense   MainLicenseSummary  `json:"mainLicense"`
	UserLicenses  UserLicensesSummary `json:"userLicenses"`
	Total         SubscriptionTotal   `json:"total"`
}

type MainLicenseSummary struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type UserLicensesSummary struct {
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

type SubscriptionTotal struct {
	Amount decimal.Decimal `json:"amount"`
}

// SeatUsageResponse answers whether another licensed employee fits
type SeatUsageResponse struct {
	CurrentSeats int  `json:"currentSeats"`
	SeatLimit    int  `json:"seatLimit"`
	CanAddUser   bool `json:"canAddUser"`
}

// RollOverRequest opens a billing period. An empty TenantIDs means every tenant.
type RollOverRequest struct {
	Period    string   `json:"period" validate:"omitempty,billing_period"`
	TenantIDs []string `json:"tenant_ids,omitempty"`
}

type RollOverResponse struct {
	Period    string            `json:"period"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}
