package wire

import (
	"errors"
)

// MaxDatagramSize bounds outgoing Kasa payloads. Devices sit on
// ethernet-MTU networks and the protocol has no fragmentation story.
const MaxDatagramSize = 1500

// initialKey is the first key byte of the autokey XOR stream.
const initialKey = 0xAB

// ErrPayloadTooLarge is returned when a payload exceeds MaxDatagramSize.
var ErrPayloadTooLarge = errors.New("wire: payload exceeds max datagram size")

// Scramble obfuscates a plaintext payload for transmission. Each output
// byte becomes the key for the next: c[i] = key ^ p[i], key = c[i].
func Scramble(plain []byte) ([]byte, error) {
	if len(plain) > MaxDatagramSize {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, len(plain))
	key := byte(initialKey)
	for i, b := range plain {
		key ^= b
		out[i] = key
	}
	return out, nil
}

// Unscramble recovers the plaintext of a received datagram. The key for
// each byte is the previous received byte, not the decoded one.
func Unscramble(data []byte) []byte {
	out := make([]byte, len(data))
	key := byte(initialKey)
	for i, c := range data {
		out[i] = key ^ c
		key = c
	}
	return out
}
