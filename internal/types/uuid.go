package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex task_01HV8ZB3Q4YVYJ6T1N3A0B8K2C
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_TENANT            = "tenant"
	UUID_PREFIX_USER              = "user"
	UUID_PREFIX_TASK              = "task"
	UUID_PREFIX_RECURRING_TASK    = "rtask"
	UUID_PREFIX_TIME_ENTRY        = "time"
	UUID_PREFIX_LICENSED_EMPLOYEE = "lic"
	UUID_PREFIX_INVOICE           = "inv"
	UUID_PREFIX_INVOICE_LINE_ITEM = "inv_line"
)
