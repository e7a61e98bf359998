package log

import (
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter narrows which events a Reader yields. Empty or nil fields
// match everything for that criterion.
type Filter struct {
	// Instance filters by exact service-run instance ID.
	Instance string

	// Category filters by event category.
	Category string

	// Subject filters by exact subject (device name) match.
	Subject string

	// Action filters by exact action match.
	Action string

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// matches reports whether the event passes every criterion.
func (f *Filter) matches(event Event) bool {
	if f.Instance != "" && event.Instance != f.Instance {
		return false
	}
	if f.Category != "" && event.Category != f.Category {
		return false
	}
	if f.Subject != "" && event.Subject != f.Subject {
		return false
	}
	if f.Action != "" && event.Action != f.Action {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader streams events out of a CBOR event file without loading the
// whole file; a long-running service produces logs far bigger than
// memory.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens an event file for reading, yielding every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens an event file, yielding only matching events.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching event, or io.EOF at end of file.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			return Event{}, err
		}
		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
