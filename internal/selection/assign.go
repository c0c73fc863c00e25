package selection

import "github.com/sigreer/osdgen/internal/catalog"

// Assignment pairs a data device with its journal. A zero Journal means the
// journal is co-located with the data device.
type Assignment struct {
	Device  *catalog.Descriptor
	Journal catalog.StableID
}

// HasJournal reports whether a separate journal device was assigned
func (a Assignment) HasJournal() bool {
	return !a.Journal.IsZero()
}

// DevicePath returns the rendered data device path
func (a Assignment) DevicePath() string {
	return a.Device.StableID.Path()
}

// JournalPath returns the rendered journal path, empty when co-located
func (a Assignment) JournalPath() string {
	return a.Journal.Path()
}

// AssignJournals pairs the i-th device with pool[i mod len(pool)]
func AssignJournals(devices []*catalog.Descriptor, pool []catalog.StableID) []Assignment {
	out := make([]Assignment, len(devices))
	for i, d := range devices {
		out[i].Device = d
		if len(pool) > 0 {
			out[i].Journal = pool[i%len(pool)]
		}
	}
	return out
}
