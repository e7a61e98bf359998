package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the optional YAML service-options file. Every field mirrors
// a command-line flag; explicitly passed flags win over file values.
type Options struct {
	// Port is the HTTP control port.
	Port int `yaml:"port"`

	// Config is the device configuration document path.
	Config string `yaml:"config"`

	// EventLog is the CBOR event-log path. Empty disables file logging.
	EventLog string `yaml:"eventLog"`

	// LogLevel is the diagnostic log level: debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// Announce enables mDNS advertising of the control surface.
	Announce *bool `yaml:"announce"`

	// Interface restricts mDNS advertising to one network interface.
	Interface string `yaml:"interface"`
}

// loadOptions reads and parses a YAML options file.
func loadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return &opts, nil
}
