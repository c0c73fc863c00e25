package catalog

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sigreer/osdgen/internal/inventory"
)

// ErrNoRecord is returned when Build is called without a host record
var ErrNoRecord = errors.New("no host record")

// Source records where a descriptor's size and rotational details came from
type Source string

const (
	SourceExtra    Source = "extra"
	SourceRootDisk Source = "root_disk"
	SourceNone     Source = "none"
)

// Descriptor is the resolved view of one physical disk
type Descriptor struct {
	Name     string
	StableID StableID
	Root     bool
	Source   Source

	info *inventory.DiskInfo
}

// SizeGB returns the reported size, or inventory.ErrFieldMissing
func (d *Descriptor) SizeGB() (float64, error) {
	return d.info.SizeGB()
}

// IsRotational returns the rotational flag, or inventory.ErrFieldMissing
func (d *Descriptor) IsRotational() (bool, error) {
	return d.info.IsRotational()
}

// Info returns the underlying disk details, nil when none were reported
func (d *Descriptor) Info() *inventory.DiskInfo {
	return d.info
}

// Catalog holds every candidate disk of one host in enumeration order
type Catalog struct {
	HostUUID string
	Devices  []*Descriptor
	// Root is the boot disk, nil when the record names none
	Root *Descriptor

	byName map[string]*Descriptor
}

// Lookup finds a descriptor by device name
func (c *Catalog) Lookup(name string) (*Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Len returns the number of devices in the catalog
func (c *Catalog) Len() int {
	return len(c.Devices)
}

// Build resolves the extra disk table and root disk of a record into a catalog.
// The root disk is folded into the candidates when the extra table omits it.
func Build(rec *inventory.HostRecord, logger *slog.Logger) (*Catalog, error) {
	if rec == nil {
		return nil, ErrNoRecord
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("host", rec.UUID)

	cat := &Catalog{
		HostUUID: rec.UUID,
		byName:   make(map[string]*Descriptor),
	}

	for _, name := range rec.Disks.Names() {
		if name == inventory.LogicalKey {
			continue
		}
		cat.add(newDescriptor(name, rec.Disks, logger))
	}

	rootName := rec.RootDisk.DeviceName()
	if rootName == "" {
		logger.Warn("record has no usable root disk name")
		return cat, nil
	}
	logger.Debug("root device", "device", rootName, "path", rec.RootDisk.Name)

	root, ok := cat.Lookup(rootName)
	if !ok {
		logger.Debug("root device not in extra disk table, adding it", "device", rootName)
		root = newDescriptor(rootName, rec.Disks, logger)
		cat.add(root)
	}
	if root.info == nil {
		root.info = rec.RootDisk.DiskInfo()
		root.Source = SourceRootDisk
	}
	root.Root = true
	cat.Root = root

	return cat, nil
}

func (c *Catalog) add(d *Descriptor) {
	if _, dup := c.byName[d.Name]; dup {
		return
	}
	c.byName[d.Name] = d
	c.Devices = append(c.Devices, d)
}

func newDescriptor(name string, disks *inventory.DiskTable, logger *slog.Logger) *Descriptor {
	d := &Descriptor{Name: name, Source: SourceNone}

	info, ok := disks.Get(name)
	if ok {
		d.info = info
		d.Source = SourceExtra
	} else {
		logger.Debug("device not in extra disk table", "device", name)
	}

	id, ok := ResolveStableID(name, info)
	if ok && id.IsSynthetic() {
		logger.Debug("device has no wwn-id, using device name instead", "device", name)
	}
	d.StableID = id
	return d
}
