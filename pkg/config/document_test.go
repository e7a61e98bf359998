package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullDocument(t *testing.T) {
	data := []byte(`{
	  "kasa": {
	    "devices": [
	      {"name": "Lamp", "id": "AAA", "model": "HS100"},
	      {"name": "Left", "id": "BBB", "child": "00", "description": "left outlet"}
	    ],
	    "net": ["192.168.1.255", "iot.example.net"]
	  }
	}`)

	doc, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, doc.Kasa.Devices, 2)
	assert.Equal(t, Device{Name: "Lamp", ID: "AAA", Model: "HS100"}, doc.Kasa.Devices[0])
	assert.Equal(t, "00", doc.Kasa.Devices[1].Child)
	assert.Equal(t, []string{"192.168.1.255", "iot.example.net"}, doc.Kasa.Net)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"kasa":`))
	assert.Error(t, err)
}

func TestEncode_RoundTripStable(t *testing.T) {
	doc := &Document{Kasa: Kasa{
		Devices: []Device{
			{Name: "Lamp", ID: "AAA", Model: "HS100"},
			{Name: "Right", ID: "BBB", Child: "01"},
		},
		Net: []string{"192.168.1.255"},
	}}

	first, err := doc.Encode()
	require.NoError(t, err)

	parsed, err := Parse(first)
	require.NoError(t, err)

	second, err := parsed.Encode()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestEncode_OmitsEmptyOptionalFields(t *testing.T) {
	doc := &Document{Kasa: Kasa{Devices: []Device{{ID: "AAA"}}}}
	data, err := doc.Encode()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"id"`)
	assert.NotContains(t, s, `"child"`)
	assert.NotContains(t, s, `"model"`)
	assert.NotContains(t, s, `"net"`)
}
