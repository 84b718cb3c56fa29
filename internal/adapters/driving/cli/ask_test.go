package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "What is this?")
	require.NoError(t, err)
	assert.Contains(t, out, "Stub answer.")
}

func TestAskCmd_GroupFlagShowsContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { askGroup = "" }()

	out, err := execute("ask", "--group", "notes", "What is this?")
	require.NoError(t, err)
	assert.Contains(t, out, "Context: group notes")
}

func TestAskCmd_AsyncPrintsID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { askAsync = false }()

	out, err := execute("ask", "--async", "What is this?")
	require.NoError(t, err)
	assert.Contains(t, out, "async-1")
}

func TestAskCmd_FailsWithoutService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chatService = nil

	_, err := execute("ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
