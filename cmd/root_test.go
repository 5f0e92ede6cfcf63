package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test must stay first in the file: it needs a command no Execute* has
// touched yet, because cobra only assigns a context during execution. Execute
// must build its own signal context rather than derive one from the command,
// which is nil here — exactly the state main() calls it in.
func TestExecuteBuildsItsOwnContext(t *testing.T) {
	require.Nil(t, rootCmd.Context())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--version"})

	require.NotPanics(t, Execute)
	assert.Contains(t, buf.String(), Version)
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunCommandRequiresCredentials(t *testing.T) {
	_, err := executeCommand(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--username")
}

func TestHelpListsSubcommands(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "run")
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
