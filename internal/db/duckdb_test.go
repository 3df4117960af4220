package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDuckDBCreatesRawSchema(t *testing.T) {
	ctx := context.Background()
	duck, err := OpenDuckDB(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	var n int64
	require.NoError(t, duck.QueryRow(
		"SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = 'raw'").Scan(&n))
	assert.Equal(t, int64(1), n)
}

func TestOpenDuckDBPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.duckdb")

	duck, err := OpenDuckDB(ctx, path)
	require.NoError(t, err)
	_, err = duck.Exec("CREATE TABLE raw.probe AS SELECT 1 AS v")
	require.NoError(t, err)
	require.NoError(t, duck.Close())

	duck, err = OpenDuckDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	var v int64
	require.NoError(t, duck.QueryRow("SELECT v FROM raw.probe").Scan(&v))
	assert.Equal(t, int64(1), v)
}
