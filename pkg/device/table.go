package device

import (
	"net"
	"strings"
)

// Table holds the device records. Insertion order is preserved and is
// the stable identity exposed to the control-point facade: records are
// never removed mid-run, so an index stays valid for the process
// lifetime.
type Table struct {
	records []Record

	// space caps how many records discovery may add. It is raised by
	// EnsureSpace at configuration load; the headroom lets discovery
	// run without unbounded growth.
	space int
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns the record at index i. The pointer stays valid for the
// process lifetime but must only be used under the manager's lock.
func (t *Table) At(i int) *Record {
	return &t.records[i]
}

// EnsureSpace raises the record cap to at least n.
func (t *Table) EnsureSpace(n int) {
	if n > t.space {
		t.space = n
	}
}

// FindByID returns the index of the record matching (deviceID, childID),
// or -1. The match is child-sensitive: a record without a child only
// matches an empty childID. IDs compare case-insensitively.
func (t *Table) FindByID(deviceID, childID string) int {
	for i := range t.records {
		r := &t.records[i]
		if !strings.EqualFold(deviceID, r.DeviceID) {
			continue
		}
		if r.ChildID == "" {
			if childID == "" {
				return i
			}
		} else if strings.EqualFold(childID, r.ChildID) {
			return i
		}
	}
	return -1
}

// FindByAddress returns the index of the first record whose last-known
// address matches ip, or -1. Used only to correlate set-relay acks,
// which carry no device identity.
func (t *Table) FindByAddress(ip net.IP) int {
	for i := range t.records {
		r := &t.records[i]
		if r.Addr != nil && r.Addr.IP.Equal(ip) {
			return i
		}
	}
	return -1
}

// Add appends a record for (deviceID, childID) and returns its index.
// Fails with ErrTableFull when the cap is reached; the caller logs and
// ignores the device.
func (t *Table) Add(deviceID, childID string) (int, error) {
	if len(t.records) >= t.space {
		return -1, ErrTableFull
	}
	t.records = append(t.records, Record{
		DeviceID: deviceID,
		ChildID:  childID,
	})
	return len(t.records) - 1, nil
}
