package inventory

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrFieldMissing is returned when a disk detail field is absent from the record
var ErrFieldMissing = errors.New("field missing")

// ErrFieldMalformed is returned when a disk detail field cannot be parsed
var ErrFieldMalformed = errors.New("field malformed")

// LogicalKey is the pseudo-entry in the extra disk table holding a device count
const LogicalKey = "logical"

// HostRecord is the introspection document for one bare-metal host
type HostRecord struct {
	UUID     string
	RootDisk *RootDisk
	Disks    *DiskTable
}

// RootDisk describes the boot disk as reported by introspection
type RootDisk struct {
	// Name is a device path, e.g. /dev/sda
	Name       string `json:"name"`
	SizeBytes  *int64 `json:"size,omitempty"`
	Rotational *bool  `json:"rotational,omitempty"`
	WWN        string `json:"wwn,omitempty"`
	Serial     string `json:"serial,omitempty"`
	Model      string `json:"model,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
}

// DiskInfo is one entry of the extra disk table. Values are kept as
// reported; accessors do the conversion.
type DiskInfo struct {
	WWNID      string
	Size       string
	Rotational string
	Vendor     string
	Model      string

	hasSize       bool
	hasRotational bool
}

// NewDiskInfo builds a DiskInfo with explicit size and rotational values.
// Empty strings mean the field is absent.
func NewDiskInfo(wwnID, size, rotational string) *DiskInfo {
	return &DiskInfo{
		WWNID:         wwnID,
		Size:          size,
		Rotational:    rotational,
		hasSize:       size != "",
		hasRotational: rotational != "",
	}
}

// HasSize reports whether the record carried a size field
func (d *DiskInfo) HasSize() bool {
	return d != nil && d.hasSize
}

// HasRotational reports whether the record carried a rotational field
func (d *DiskInfo) HasRotational() bool {
	return d != nil && d.hasRotational
}

// SizeGB returns the reported size in GB. NaN and infinite values are malformed.
func (d *DiskInfo) SizeGB() (float64, error) {
	if !d.HasSize() {
		return 0, ErrFieldMissing
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(d.Size), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrFieldMalformed
	}
	return v, nil
}

// IsRotational returns the rotational flag. Inventory reports "1"/"0".
func (d *DiskInfo) IsRotational() (bool, error) {
	if !d.HasRotational() {
		return false, ErrFieldMissing
	}
	switch strings.ToLower(strings.TrimSpace(d.Rotational)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, ErrFieldMalformed
}

// DiskTable is the extra disk table of a record in document order
type DiskTable struct {
	names   []string
	entries map[string]*DiskInfo
}

// NewDiskTable creates an empty table
func NewDiskTable() *DiskTable {
	return &DiskTable{entries: make(map[string]*DiskInfo)}
}

// Add appends a device. A nil info records the name without details.
func (t *DiskTable) Add(name string, info *DiskInfo) {
	if _, seen := t.entries[name]; !seen {
		t.names = append(t.names, name)
	}
	t.entries[name] = info
}

// Names returns every key of the table, including LogicalKey, in document order
func (t *DiskTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Get looks up the detail object for a device name
func (t *DiskTable) Get(name string) (*DiskInfo, bool) {
	if t == nil {
		return nil, false
	}
	info, ok := t.entries[name]
	if !ok || info == nil {
		return nil, false
	}
	return info, true
}

// Len returns the number of keys in the table
func (t *DiskTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}
