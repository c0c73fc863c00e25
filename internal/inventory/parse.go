package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// ErrEmptyRecord is returned when an introspection document has no content
var ErrEmptyRecord = errors.New("empty introspection record")

// hostDocument is the subset of the introspection JSON we consume
type hostDocument struct {
	RootDisk *rootDiskDocument `json:"root_disk"`
	Extra    struct {
		Disk *DiskTable `json:"disk"`
	} `json:"extra"`
}

type rootDiskDocument struct {
	Name       string    `json:"name"`
	Size       flexValue `json:"size"`
	Rotational flexValue `json:"rotational"`
	WWN        flexValue `json:"wwn"`
	Serial     flexValue `json:"serial"`
	Model      flexValue `json:"model"`
	Vendor     flexValue `json:"vendor"`
}

type diskDocument struct {
	WWNID      flexValue `json:"wwn-id"`
	Size       flexValue `json:"size"`
	Rotational flexValue `json:"rotational"`
	Vendor     flexValue `json:"vendor"`
	Model      flexValue `json:"model"`
}

// flexValue accepts a JSON string, number or boolean and keeps its text
type flexValue struct {
	set  bool
	text string
}

func (f *flexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	f.set = true
	if b[0] == '"' {
		return json.Unmarshal(b, &f.text)
	}
	f.text = string(b)
	return nil
}

// ParseHostRecord decodes the introspection document of one host
func ParseHostRecord(uuid string, data []byte) (*HostRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", uuid, ErrEmptyRecord)
	}

	var doc hostDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse introspection data for %s: %w", uuid, err)
	}

	rec := &HostRecord{
		UUID:  uuid,
		Disks: doc.Extra.Disk,
	}
	if rec.Disks == nil {
		rec.Disks = NewDiskTable()
	}
	if doc.RootDisk != nil {
		rec.RootDisk = doc.RootDisk.convert()
	}
	return rec, nil
}

func (r *rootDiskDocument) convert() *RootDisk {
	root := &RootDisk{
		Name:   r.Name,
		WWN:    r.WWN.text,
		Serial: r.Serial.text,
		Model:  r.Model.text,
		Vendor: r.Vendor.text,
	}
	if r.Size.set {
		if n, err := strconv.ParseInt(r.Size.text, 10, 64); err == nil {
			root.SizeBytes = &n
		} else if f, err := strconv.ParseFloat(r.Size.text, 64); err == nil {
			n := int64(f)
			root.SizeBytes = &n
		}
	}
	if r.Rotational.set {
		switch strings.ToLower(r.Rotational.text) {
		case "true", "1":
			v := true
			root.Rotational = &v
		case "false", "0":
			v := false
			root.Rotational = &v
		}
	}
	return root
}

// DeviceName returns the base name of the root disk path, e.g. "sda"
func (r *RootDisk) DeviceName() string {
	if r == nil || strings.TrimSpace(r.Name) == "" {
		return ""
	}
	base := path.Base(strings.TrimSpace(r.Name))
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// DiskInfo converts the root disk details into an extra-table style entry.
// Size is converted from bytes to GB.
func (r *RootDisk) DiskInfo() *DiskInfo {
	info := &DiskInfo{Vendor: r.Vendor, Model: r.Model}
	if r.SizeBytes != nil {
		info.Size = strconv.FormatFloat(float64(*r.SizeBytes)/1e9, 'f', -1, 64)
		info.hasSize = true
	}
	if r.Rotational != nil {
		info.Rotational = "0"
		if *r.Rotational {
			info.Rotational = "1"
		}
		info.hasRotational = true
	}
	return info
}

// UnmarshalJSON decodes the extra disk object keeping key order
func (t *DiskTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	table := NewDiskTable()
	if tok == nil {
		*t = *table
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("extra disk table: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("extra disk table: unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("extra disk table: device %s: %w", name, err)
		}
		table.Add(name, decodeDiskInfo(raw))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*t = *table
	return nil
}

// decodeDiskInfo returns nil for entries that are not objects
func decodeDiskInfo(raw json.RawMessage) *DiskInfo {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var doc diskDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil
	}
	return &DiskInfo{
		WWNID:         strings.TrimSpace(doc.WWNID.text),
		Size:          doc.Size.text,
		Rotational:    doc.Rotational.text,
		Vendor:        doc.Vendor.text,
		Model:         doc.Model.text,
		hasSize:       doc.Size.set,
		hasRotational: doc.Rotational.set,
	}
}
