package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}

	// the natural keys the ledger and the task engine rely on
	first := migrations[0].SQL
	for _, fragment := range []string{
		"uq_licensed_employees_period",
		"uq_invoices_tenant_period",
		"idx_invoice_lines_main",
		"idx_invoice_lines_user",
		"idx_tasks_natural_key",
	} {
		assert.True(t, strings.Contains(first, fragment), fragment)
	}

	last := migrations[len(migrations)-1]
	assert.Equal(t, "0002_recurring_task_anchor_day.sql", last.Version)
	assert.Contains(t, last.SQL, "anchor_day")
}
