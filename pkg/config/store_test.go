package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kasa.json")
	store := NewStore(path)

	doc := &Document{Kasa: Kasa{
		Devices: []Device{{Name: "Lamp", ID: "AAA"}},
		Net:     []string{"192.168.1.255"},
	}}
	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, doc.Kasa, loaded.Kasa)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"))

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestStore_SaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "kasa.json")
	store := NewStore(path)

	require.NoError(t, store.Save(&Document{}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
}
