package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "gosweep.log")
	closer, err := Setup(Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	log.WithField("case", "pipe_Re50").Info("case finished")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"case":"pipe_Re50"`)
	assert.Contains(t, string(data), `"msg":"case finished"`)

	closer, err = Setup(Config{})
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.NoError(t, closer.Close())

	_, err = Setup(Config{Level: "loud"})
	assert.Error(t, err)
	_, err = Setup(Config{Format: "xml"})
	assert.Error(t, err)
}
