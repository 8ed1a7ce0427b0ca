package symbols

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasEveryPool(t *testing.T) {
	lib := Default()
	for _, p := range KnownPools {
		assert.NotEmpty(t, lib.Messages(p), "pool %s", p)
	}
	assert.Len(t, lib.Pools(), len(KnownPools))
}

func TestParseRejectsUnknownPool(t *testing.T) {
	_, err := Parse([]byte("pools:\n  whispers: [\"a\"]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whispers")
}

func TestParseDropsBlankLines(t *testing.T) {
	lib, err := Parse([]byte("pools:\n  movement: [\"  \", \" go \"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, lib.Messages(PoolMovement))
}

func TestLoadOverridesAndFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pools:\n  look_back:\n    - \"behind you\"\n"), 0o644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"behind you"}, lib.Messages(PoolLookBack))
	assert.Equal(t, Default().Messages(PoolStationary), lib.Messages(PoolStationary))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	lib, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Pools(), lib.Pools())
}
