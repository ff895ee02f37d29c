package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cffauthor/pkg/logging"
)

func TestNew(t *testing.T) {
	a, err := New("1.2.3", "abc", "today", "tests", WithLogger(&logging.Nop))
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", a.Version())
	require.NotNil(t, a.Config())
	require.NotNil(t, a.Logger())
}

func TestVersionCommand(t *testing.T) {
	a, err := New("1.2.3", "abc", "today", "tests", WithLogger(&logging.Nop))
	require.NoError(t, err)

	cmd := a.NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "cffauthor 1.2.3\n", buf.String())
}

func TestVersionCommandVerbose(t *testing.T) {
	a, err := New("1.2.3", "abc", "today", "tests", WithLogger(&logging.Nop))
	require.NoError(t, err)
	a.Config().Verbose = true

	cmd := a.NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "commit:   abc")
	assert.Contains(t, buf.String(), "built by: tests")
}
