package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileProviderArrayForm(t *testing.T) {
	fp, err := NewFileProvider(writeSnapshot(t, `[
		{"symbol": "SPY", "price": 450, "iv": 18},
		{"symbol": "QQQ", "price": 380, "iv": 22}
	]`))
	require.NoError(t, err)

	batch, err := fp.Fetch(context.Background(), []string{"SPY", "MISSING"})
	require.NoError(t, err)
	require.NotNil(t, batch["SPY"])
	assert.Equal(t, 450.0, *batch["SPY"].Price)
	assert.Nil(t, batch["MISSING"])
	assert.ElementsMatch(t, []string{"SPY", "QQQ"}, fp.Symbols())
}

func TestFileProviderKeyedForm(t *testing.T) {
	fp, err := NewFileProvider(writeSnapshot(t, `{
		"SPY": {"price": 450, "iv": 18},
		"DEAD": null
	}`))
	require.NoError(t, err)

	batch, err := fp.Fetch(context.Background(), []string{"SPY", "DEAD"})
	require.NoError(t, err)
	require.NotNil(t, batch["SPY"])
	assert.Equal(t, "SPY", batch["SPY"].Symbol, "symbol backfilled from the key")
	assert.Nil(t, batch["DEAD"], "explicit null is the unavailable marker")
}

func TestFileProviderArrayEntryWithoutSymbol(t *testing.T) {
	_, err := NewFileProvider(writeSnapshot(t, `[
		{"symbol": "SPY", "price": 450},
		{"price": 380, "iv": 22}
	]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1 has no symbol")
}

func TestFileProviderMalformed(t *testing.T) {
	_, err := NewFileProvider(writeSnapshot(t, "not json"))
	assert.Error(t, err)
}
