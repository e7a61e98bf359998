// Package device is the core of the Kasa control service: the in-memory
// device table, UDP discovery and sensing, and the per-device
// command/confirm/retry/timeout state machine.
//
// A control point is one controllable outlet: a single-outlet device, or
// one child of a multi-outlet device. Points are addressed externally by
// name and internally by stable table index; the pair (deviceId, childId)
// identifies the outlet on the wire.
//
// All state lives behind one mutex in Manager. Handlers are short and
// non-blocking: inbound datagrams, the once-per-second Periodic tick, and
// the HTTP-facing facade all serialise on it.
package device
