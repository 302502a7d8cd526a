package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTunablesDefaults(t *testing.T) {
	tun, err := LoadTunables("non_existent_tunables.yml")
	require.NoError(t, err)

	assert.Equal(t, 1200, tun.PaceDelayMillis)
	assert.Equal(t, 2000, tun.RecallDelayMillis)
	assert.Equal(t, 1200*time.Millisecond, tun.PaceDelay())
	assert.Equal(t, 2*time.Second, tun.RecallDelay())
}

func TestLoadTunablesFile(t *testing.T) {
	content := []byte("pace_delay_ms: 300\nrecall_delay_ms: 500\nmax_tokens: 512\n")
	tmpfile, err := os.CreateTemp("", "tunables_test_*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.Write(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	tun, err := LoadTunables(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, 300, tun.PaceDelayMillis)
	assert.Equal(t, 500, tun.RecallDelayMillis)
	assert.Equal(t, int64(512), tun.MaxTokens)
}
