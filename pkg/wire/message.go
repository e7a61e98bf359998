package wire

import (
	"encoding/json"
	"fmt"
)

// KasaPort is the UDP port Kasa devices listen on.
const KasaPort = 9999

// Child describes one outlet of a multi-outlet device in a sysinfo reply.
type Child struct {
	ID    string `json:"id"`
	Alias string `json:"alias,omitempty"`
	State int    `json:"state"`
}

// Sysinfo is the get_sysinfo reply body: device identity, model, alias
// and relay state. Multi-outlet devices report per-outlet state in
// Children instead of RelayState.
type Sysinfo struct {
	DeviceID   string  `json:"deviceId"`
	Model      string  `json:"model,omitempty"`
	Alias      string  `json:"alias,omitempty"`
	RelayState int     `json:"relay_state"`
	Children   []Child `json:"children,omitempty"`
}

// SetRelayResult is the set_relay_state acknowledgment. It carries no
// child identity and no final state, only an error code (0 = success).
type SetRelayResult struct {
	ErrCode int `json:"err_code"`
}

// Reply is the envelope of any datagram a device sends back. Exactly one
// of the inner pointers is set for the replies this service handles.
type Reply struct {
	System struct {
		GetSysinfo    *Sysinfo        `json:"get_sysinfo"`
		SetRelayState *SetRelayResult `json:"set_relay_state"`
	} `json:"system"`
}

// ParseReply decodes a deobfuscated datagram.
func ParseReply(data []byte) (*Reply, error) {
	var r Reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("wire: malformed reply: %w", err)
	}
	return &r, nil
}

type senseRequest struct {
	System struct {
		GetSysinfo struct{} `json:"get_sysinfo"`
	} `json:"system"`
}

type relayState struct {
	State int `json:"state"`
}

type controlContext struct {
	ChildIDs []string `json:"child_ids"`
}

// Field order matters: devices expect "context" before "system".
type setRelayRequest struct {
	Context *controlContext `json:"context,omitempty"`
	System  struct {
		SetRelayState relayState `json:"set_relay_state"`
	} `json:"system"`
}

type setAliasRequest struct {
	System struct {
		SetDevAlias struct {
			Alias string `json:"alias"`
		} `json:"set_dev_alias"`
	} `json:"system"`
}

type setDimmerRequest struct {
	Dimmer struct {
		SetSwitchState relayState `json:"set_switch_state"`
	} `json:"smartlife.iot.dimmer"`
}

// The request shapes above are fixed; marshaling them cannot fail.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("wire: marshal request: %v", err))
	}
	return data
}

// SenseRequest returns the get_sysinfo probe payload, used both for the
// broadcast sweep and for directed probes.
func SenseRequest() []byte {
	var req senseRequest
	return mustMarshal(&req)
}

// SetRelayRequest returns the relay command payload. A child outlet is
// addressed as deviceID immediately followed by childID, no separator;
// this concatenation is protocol-defined.
func SetRelayRequest(deviceID, childID string, on bool) []byte {
	var req setRelayRequest
	if childID != "" {
		req.Context = &controlContext{ChildIDs: []string{deviceID + childID}}
	}
	if on {
		req.System.SetRelayState.State = 1
	}
	return mustMarshal(&req)
}

// SetAliasRequest returns the payload that renames a device.
func SetAliasRequest(alias string) []byte {
	var req setAliasRequest
	req.System.SetDevAlias.Alias = alias
	return mustMarshal(&req)
}

// SetDimmerRequest returns the switch command payload for dimmer models
// (HS220) that do not implement set_relay_state.
func SetDimmerRequest(on bool) []byte {
	var req setDimmerRequest
	if on {
		req.Dimmer.SetSwitchState.State = 1
	}
	return mustMarshal(&req)
}
