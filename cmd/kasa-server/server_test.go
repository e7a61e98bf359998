package main

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housekasa/kasa-go/pkg/config"
	"github.com/housekasa/kasa-go/pkg/device"
	"github.com/housekasa/kasa-go/pkg/wire"
)

type nopSender struct{}

func (nopSender) Send(addr *net.UDPAddr, payload []byte) error { return nil }

// newTestServer builds a server around a manager seeded with one
// discovered device named Lamp.
func newTestServer(t *testing.T) (*httptest.Server, *device.Manager, *config.Store) {
	t.Helper()

	manager := device.NewManager(device.Options{Sender: nopSender{}})
	manager.Refresh(nil)

	data, err := wire.Scramble([]byte(`{"system":{"get_sysinfo":{"deviceId":"8006AF1234","model":"HS103(US)","alias":"Lamp","relay_state":0}}}`))
	require.NoError(t, err)
	manager.HandleDatagram(data, &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 9999})
	require.Equal(t, 1, manager.Count())

	store := config.NewStore(filepath.Join(t.TempDir(), "kasa.json"))
	srv := NewServer(ServerConfig{
		Port:     0,
		Host:     "testhost",
		Instance: "test-instance",
		Version:  "test",
	}, manager, store, nil, nil)

	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)
	return ts, manager, store
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	var payload statusPayload
	resp := getJSON(t, ts.URL+"/kasa/status", &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "testhost", payload.Host)
	assert.Equal(t, "test-instance", payload.Proxy)
	assert.NotZero(t, payload.Timestamp)

	lamp, ok := payload.Control.Status["Lamp"]
	require.True(t, ok)
	assert.Equal(t, "off", lamp.State)
	assert.Equal(t, "off", lamp.Command)
	assert.Equal(t, "light", lamp.Gear)
	assert.Zero(t, lamp.Pulse)
}

func TestSetEndpoint(t *testing.T) {
	ts, manager, _ := newTestServer(t)

	var payload statusPayload
	resp := getJSON(t, ts.URL+"/kasa/set?point=Lamp&state=on", &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "on", payload.Control.Status["Lamp"].Command)
	assert.True(t, manager.Commanded(0))
}

func TestSetEndpoint_Pulse(t *testing.T) {
	ts, manager, _ := newTestServer(t)

	var payload statusPayload
	resp := getJSON(t, ts.URL+"/kasa/set?point=Lamp&state=on&pulse=30&cause=test", &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotZero(t, payload.Control.Status["Lamp"].Pulse)
	assert.Equal(t, payload.Control.Status["Lamp"].Pulse, manager.Deadline(0).Unix())
}

func TestSetEndpoint_Errors(t *testing.T) {
	ts, _, _ := newTestServer(t)

	cases := []struct {
		name  string
		query string
		code  int
	}{
		{"missing point", "state=on", http.StatusNotFound},
		{"unknown point", "point=Heater&state=on", http.StatusNotFound},
		{"missing state", "point=Lamp", http.StatusBadRequest},
		{"invalid state", "point=Lamp&state=blue", http.StatusBadRequest},
		{"negative pulse", "point=Lamp&state=on&pulse=-1", http.StatusBadRequest},
		{"garbled pulse", "point=Lamp&state=on&pulse=soon", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := getJSON(t, ts.URL+"/kasa/set?"+tc.query, nil)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestConfigEndpoint_Get(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/kasa/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc, err := config.Parse(body)
	require.NoError(t, err)
	require.Len(t, doc.Kasa.Devices, 1)
	assert.Equal(t, "8006AF1234", doc.Kasa.Devices[0].ID)
}

func TestConfigEndpoint_Post(t *testing.T) {
	ts, manager, store := newTestServer(t)

	replacement := `{"kasa":{"devices":[{"name":"Heater","id":"8006BEEF"}],"net":[]}}`
	resp, err := http.Post(ts.URL+"/kasa/config", "application/json", strings.NewReader(replacement))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, 1, manager.Count())
	assert.Equal(t, "Heater", manager.Name(0))

	saved, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "8006BEEF", saved.Kasa.Devices[0].ID)
}

func TestConfigEndpoint_PostInvalid(t *testing.T) {
	ts, manager, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/kasa/config", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The live configuration is untouched.
	assert.Equal(t, "Lamp", manager.Name(0))
}

func TestCORSGate(t *testing.T) {
	ts, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/kasa/status", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", resp.Header.Get("Access-Control-Allow-Methods"))

	get := getJSON(t, ts.URL+"/kasa/status", nil)
	assert.Equal(t, "*", get.Header.Get("Access-Control-Allow-Origin"))
}
