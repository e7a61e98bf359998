// Package transport owns the UDP socket used to talk to Kasa devices.
//
// One socket, bound to an ephemeral local port with broadcast permission,
// serves the whole process: directed commands, directed probes and the
// periodic broadcast sweep all go out through it, and every device reply
// comes back in through its read pump.
package transport
