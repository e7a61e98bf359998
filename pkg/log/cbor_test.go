package log

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEvent_RoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC),
		Instance:  "f3b9c2d4-0000-4000-8000-000000000001",
		Category:  CategoryDevice,
		Subject:   "Lamp",
		Action:    ActionSet,
		Detail:    "on FOR 10 SECONDS",
	}

	data, err := EncodeEvent(event)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, event.Instance, decoded.Instance)
	assert.Equal(t, event.Category, decoded.Category)
	assert.Equal(t, event.Subject, decoded.Subject)
	assert.Equal(t, event.Action, decoded.Action)
	assert.Equal(t, event.Detail, decoded.Detail)
}

func TestEncodeEvent_OmitsEmptyOptionalFields(t *testing.T) {
	short := Event{
		Timestamp: time.Now(),
		Category:  CategorySystem,
		Subject:   "CONFIG",
		Action:    ActionConfigSave,
	}
	long := short
	long.Instance = "f3b9c2d4-0000-4000-8000-000000000001"
	long.Detail = "TO DEPOT kasa (AUTODETECT)"

	shortData, err := EncodeEvent(short)
	require.NoError(t, err)
	longData, err := EncodeEvent(long)
	require.NoError(t, err)

	assert.Less(t, len(shortData), len(longData))
}

func TestDecodeEvent_Garbage(t *testing.T) {
	_, err := DecodeEvent([]byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}
