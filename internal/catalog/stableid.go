package catalog

import (
	"strings"

	"github.com/sigreer/osdgen/internal/inventory"
)

// SyntheticPrefix marks identifiers derived from the kernel device name.
// Such identifiers are not stable across reboots.
const SyntheticPrefix = "name."

// StableID identifies a block device. It is either a hardware identifier
// (the wwn-id reported by introspection) or a synthetic "name.<dev>" value.
// The zero value means "no device".
type StableID string

// SyntheticID builds the fallback identifier for a device name
func SyntheticID(name string) StableID {
	return StableID(SyntheticPrefix + name)
}

// ResolveStableID returns the hardware identifier from info when present,
// else the synthetic fallback. ok is false when neither is possible.
func ResolveStableID(name string, info *inventory.DiskInfo) (StableID, bool) {
	if info != nil && info.WWNID != "" {
		return StableID(info.WWNID), true
	}
	if name == "" {
		return "", false
	}
	return SyntheticID(name), true
}

// IsZero reports whether the identifier is unset
func (id StableID) IsZero() bool {
	return id == ""
}

// IsSynthetic reports whether the identifier was derived from a device name
func (id StableID) IsSynthetic() bool {
	return strings.HasPrefix(string(id), SyntheticPrefix)
}

// DeviceName recovers the device name of a synthetic identifier
func (id StableID) DeviceName() (string, bool) {
	if !id.IsSynthetic() {
		return "", false
	}
	return strings.TrimPrefix(string(id), SyntheticPrefix), true
}

// Path renders the identifier as a device path:
// /dev/<name> for synthetic identifiers, /dev/disk/by-id/<id> otherwise.
func (id StableID) Path() string {
	if id.IsZero() {
		return ""
	}
	if name, ok := id.DeviceName(); ok {
		return "/dev/" + name
	}
	return "/dev/disk/by-id/" + string(id)
}

func (id StableID) String() string {
	return string(id)
}
