package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "catalog "+version+"\n", out.String())
}

func TestServeCommand_BadConfigPath(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--config", "/does/not/exist.yaml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	setupLogger("prod", &buf).Debug("hidden")
	setupLogger("prod", &buf).Info("shown")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	setupLogger("dev", &buf).Debug("shown")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
