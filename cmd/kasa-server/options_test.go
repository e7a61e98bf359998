package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeOptions(t, `
port: 9000
config: /var/lib/house/kasa.json
eventLog: /var/lib/house/kasa.events
logLevel: debug
announce: false
interface: eth0
`)
	opts, err := loadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, opts.Port)
	assert.Equal(t, "/var/lib/house/kasa.json", opts.Config)
	assert.Equal(t, "/var/lib/house/kasa.events", opts.EventLog)
	assert.Equal(t, "debug", opts.LogLevel)
	require.NotNil(t, opts.Announce)
	assert.False(t, *opts.Announce)
	assert.Equal(t, "eth0", opts.Interface)
}

func TestLoadOptions_PartialFile(t *testing.T) {
	path := writeOptions(t, "port: 9000\n")
	opts, err := loadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, opts.Port)
	assert.Equal(t, "", opts.Config)
	assert.Nil(t, opts.Announce, "announce unset stays tri-state nil")
}

func TestLoadOptions_EmptyFile(t *testing.T) {
	path := writeOptions(t, "")
	opts, err := loadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 0, opts.Port)
}

func TestLoadOptions_UnknownField(t *testing.T) {
	path := writeOptions(t, "prot: 9000\n")
	_, err := loadOptions(path)
	assert.Error(t, err)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := loadOptions(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
