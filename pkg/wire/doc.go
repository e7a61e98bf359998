// Package wire implements the Kasa UDP wire protocol: the autokey XOR
// obfuscation applied to every datagram, and the JSON request and reply
// shapes the service composes and parses.
//
// Payloads carry no length prefix; the UDP datagram boundary is the
// framing. The obfuscation is fixed by the protocol and provides no
// confidentiality.
package wire
