package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenseRequest_Exact(t *testing.T) {
	assert.Equal(t, `{"system":{"get_sysinfo":{}}}`, string(SenseRequest()))
}

func TestSetRelayRequest_SingleOutlet(t *testing.T) {
	assert.Equal(t,
		`{"system":{"set_relay_state":{"state":1}}}`,
		string(SetRelayRequest("AAA", "", true)))
	assert.Equal(t,
		`{"system":{"set_relay_state":{"state":0}}}`,
		string(SetRelayRequest("AAA", "", false)))
}

func TestSetRelayRequest_ChildOutlet(t *testing.T) {
	// deviceId and childId are concatenated without separator.
	assert.Equal(t,
		`{"context":{"child_ids":["BBB01"]},"system":{"set_relay_state":{"state":0}}}`,
		string(SetRelayRequest("BBB", "01", false)))
}

func TestSetAliasRequest_Exact(t *testing.T) {
	assert.Equal(t,
		`{"system":{"set_dev_alias":{"alias":"Porch"}}}`,
		string(SetAliasRequest("Porch")))
}

func TestSetDimmerRequest_Exact(t *testing.T) {
	assert.Equal(t,
		`{"smartlife.iot.dimmer":{"set_switch_state":{"state":1}}}`,
		string(SetDimmerRequest(true)))
}

func TestParseReply_Sysinfo(t *testing.T) {
	data := []byte(`{"system":{"get_sysinfo":{"deviceId":"AAA","model":"HS100","alias":"Lamp","relay_state":1}}}`)
	reply, err := ParseReply(data)
	require.NoError(t, err)
	require.NotNil(t, reply.System.GetSysinfo)
	assert.Nil(t, reply.System.SetRelayState)

	info := reply.System.GetSysinfo
	assert.Equal(t, "AAA", info.DeviceID)
	assert.Equal(t, "HS100", info.Model)
	assert.Equal(t, "Lamp", info.Alias)
	assert.Equal(t, 1, info.RelayState)
	assert.Empty(t, info.Children)
}

func TestParseReply_SysinfoWithChildren(t *testing.T) {
	data := []byte(`{"system":{"get_sysinfo":{"deviceId":"BBB","model":"KP400",` +
		`"children":[{"id":"00","alias":"Left","state":0},{"id":"01","alias":"Right","state":1}]}}}`)
	reply, err := ParseReply(data)
	require.NoError(t, err)
	require.NotNil(t, reply.System.GetSysinfo)

	children := reply.System.GetSysinfo.Children
	require.Len(t, children, 2)
	assert.Equal(t, Child{ID: "00", Alias: "Left", State: 0}, children[0])
	assert.Equal(t, Child{ID: "01", Alias: "Right", State: 1}, children[1])
}

func TestParseReply_SetRelayAck(t *testing.T) {
	reply, err := ParseReply([]byte(`{"system":{"set_relay_state":{"err_code":0}}}`))
	require.NoError(t, err)
	assert.Nil(t, reply.System.GetSysinfo)
	require.NotNil(t, reply.System.SetRelayState)
	assert.Equal(t, 0, reply.System.SetRelayState.ErrCode)
}

func TestParseReply_Malformed(t *testing.T) {
	_, err := ParseReply([]byte(`{"system":`))
	assert.Error(t, err)
}

func TestParseReply_UnknownShape(t *testing.T) {
	reply, err := ParseReply([]byte(`{"emeter":{"get_realtime":{}}}`))
	require.NoError(t, err)
	assert.Nil(t, reply.System.GetSysinfo)
	assert.Nil(t, reply.System.SetRelayState)
}
