// Package log records service events: the things the Kasa manager does
// or observes (SET, CONFIRMED, SILENT, ...), as opposed to diagnostics,
// which go through log/slog.
//
// Events carry a category, a subject (usually a device name), an action,
// and a free-form detail. Consumers subscribe by implementing Logger;
// FileLogger persists events in CBOR, Reader plays them back, and
// SlogAdapter mirrors them into a slog.Logger for console output.
package log
