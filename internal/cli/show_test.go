package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: memory\n"), 0o644))
	return path
}

func TestShowCommand_EmptyCart(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "--config", memoryConfig(t)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "(empty)")
	assert.Contains(t, out.String(), "revision 0")
}

func TestShowCommand_JSONFormat(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "--config", memoryConfig(t), "--format", "json"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"revision": 0`)
	assert.Contains(t, out.String(), `"items": []`)
}

func TestShowCommand_BadConfigExitCode(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "--config", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
