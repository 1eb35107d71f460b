package types

// InvoiceStatus is the lifecycle of a license invoice. Only drafts are written by the ledger.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
)

// InvoiceLineType is the kind of priced item on a license invoice
type InvoiceLineType string

const (
	InvoiceLineTypeMainLicense InvoiceLineType = "MAIN_LICENSE"
	InvoiceLineTypeUserLicense InvoiceLineType = "USER_LICENSE"
)

// Metadata keys forming the natural key of a USER_LICENSE line
const (
	InvoiceLineMetadataUserID = "user_id"
	InvoiceLineMetadataPeriod = "period"
)

// DefaultEmployeeLimit is the seat limit of a tenant that has none configured
const DefaultEmployeeLimit = 5

// Subscription summary statuses
const (
	SubscriptionSummaryStatusEstimated = "estimated"
)
