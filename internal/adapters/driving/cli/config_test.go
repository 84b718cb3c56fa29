package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

func TestConfigGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "get", "model")
	require.NoError(t, err)
	assert.Contains(t, out, domain.DefaultModel)
}

func TestConfigGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "get", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestConfigSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "set", "part_size", "2048")
	require.NoError(t, err)

	out, err := execute("config", "get", "part_size")
	require.NoError(t, err)
	assert.Contains(t, out, "2048")
}

func TestConfigSetCmd_RejectsBadValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("config", "set", "part_size", "lots")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigPathCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
}
