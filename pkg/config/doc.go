// Package config defines the persisted configuration document for the
// Kasa control service and a small file depot that loads and stores it.
//
// The document is a single JSON object:
//
//	{ "kasa": { "devices": [ ... ], "net": [ "<addr>", ... ] } }
//
// Runtime state (commanded state, pulse deadlines) is never persisted.
package config
