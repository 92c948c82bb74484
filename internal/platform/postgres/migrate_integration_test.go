//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/pkg/testutil/containers"
)

// legacyInventory mimics the old data model: one row per stock movement and
// no primary key on blood_type.
const legacyInventory = `
CREATE TABLE blood_inventory (
    blood_type TEXT NOT NULL,
    quantity   INT NOT NULL DEFAULT 0,
    updated_by UUID,
    updated_at TIMESTAMPTZ NOT NULL
);
INSERT INTO blood_inventory (blood_type, quantity, updated_at) VALUES
    ('A+', 3, '2024-01-01T00:00:00Z'),
    ('A+', 4, '2024-02-01T00:00:00Z'),
    ('A+', 1, '2024-03-01T00:00:00Z'),
    ('O-', 5, '2024-01-15T00:00:00Z');
`

func TestMigrateMergesLegacyInventoryDuplicates(t *testing.T) {
	pg := containers.NewPostgresContainer(t, legacyInventory)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, pg.DB))

	var rows int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blood_inventory`).Scan(&rows))
	assert.Equal(t, 2, rows, "one row per blood type survives")

	var quantity int
	var updatedAt string
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT quantity, updated_at::text FROM blood_inventory WHERE blood_type = 'A+'`).
		Scan(&quantity, &updatedAt))
	assert.Equal(t, 8, quantity, "duplicate quantities are summed")
	assert.Contains(t, updatedAt, "2024-03-01", "newest timestamp wins")

	var hasPK bool
	require.NoError(t, pg.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_constraint
			WHERE conrelid = 'blood_inventory'::regclass AND contype = 'p'
		)`).Scan(&hasPK))
	assert.True(t, hasPK, "primary key is backfilled")

	require.NoError(t, Migrate(ctx, pg.DB), "rerunning the migration is safe")
}
