package config

import (
	"encoding/json"
	"fmt"
)

// Device is one configured control point. ID is the Kasa device
// identifier; Child selects an outlet of a multi-outlet device and is
// empty for single-outlet devices.
type Device struct {
	Name        string `json:"name,omitempty"`
	ID          string `json:"id"`
	Child       string `json:"child,omitempty"`
	Model       string `json:"model,omitempty"`
	Description string `json:"description,omitempty"`
}

// Kasa groups the configured devices and the broadcast targets the
// service senses on. Net entries are hostnames or IPv4 addresses in
// text form.
type Kasa struct {
	Devices []Device `json:"devices"`
	Net     []string `json:"net,omitempty"`
}

// Document is the root of the persisted configuration.
type Document struct {
	Kasa Kasa `json:"kasa"`
}

// Parse decodes a configuration document, rejecting JSON that does not
// form a valid document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: invalid document: %w", err)
	}
	return &doc, nil
}

// Encode serialises the document. Field order follows the struct
// declarations, so encoding is stable across round trips.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("config: encode document: %w", err)
	}
	return data, nil
}
