package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigreer/osdgen/internal/catalog"
)

func descriptors(n int) []*catalog.Descriptor {
	out := make([]*catalog.Descriptor, n)
	for i := range out {
		name := fmt.Sprintf("sd%c", 'a'+i)
		out[i] = &catalog.Descriptor{Name: name, StableID: catalog.SyntheticID(name)}
	}
	return out
}

func TestAssignJournalsRoundRobin(t *testing.T) {
	pool := []catalog.StableID{"J0", "J1", "J2"}

	for n := 0; n <= 7; n++ {
		t.Run(fmt.Sprintf("%d devices", n), func(t *testing.T) {
			devs := descriptors(n)
			got := AssignJournals(devs, pool)
			assert.Len(t, got, n)
			for i, a := range got {
				assert.Same(t, devs[i], a.Device)
				assert.Equal(t, pool[i%len(pool)], a.Journal)
			}
		})
	}
}

func TestAssignJournalsWithoutPool(t *testing.T) {
	devs := descriptors(4)

	for _, pool := range [][]catalog.StableID{nil, {}} {
		got := AssignJournals(devs, pool)
		assert.Len(t, got, 4)
		for _, a := range got {
			assert.False(t, a.HasJournal())
			assert.Empty(t, a.JournalPath())
		}
	}
}

func TestAssignmentPaths(t *testing.T) {
	a := Assignment{
		Device:  &catalog.Descriptor{Name: "sdb", StableID: "wwn-0x5000c500a1b2c3d4"},
		Journal: catalog.SyntheticID("nvme0n1"),
	}
	assert.Equal(t, "/dev/disk/by-id/wwn-0x5000c500a1b2c3d4", a.DevicePath())
	assert.Equal(t, "/dev/nvme0n1", a.JournalPath())
	assert.True(t, a.HasJournal())
}
