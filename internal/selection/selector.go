package selection

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"

	"github.com/dustin/go-humanize"

	"github.com/sigreer/osdgen/internal/catalog"
	"github.com/sigreer/osdgen/internal/inventory"
)

// SizeTolerance is the accepted relative difference between a device's
// reported size and the requested size
const SizeTolerance = 0.05

// Filters holds the optional device predicates. Unset fields always pass.
type Filters struct {
	NamePattern    string
	SizeGB         *float64
	Rotational     *bool
	JournalPattern string
	// MinJournals is the minimum journal candidates per host, 0 to disable
	MinJournals int
}

// Selector applies Filters to host catalogs
type Selector struct {
	filters   Filters
	nameRE    *regexp.Regexp
	journalRE *regexp.Regexp
	logger    *slog.Logger
}

// New validates the filters and compiles their patterns
func New(filters Filters, logger *slog.Logger) (*Selector, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Selector{filters: filters, logger: logger}

	if filters.NamePattern != "" {
		re, err := regexp.Compile(filters.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("%w: device name pattern %q: %v", ErrInvalidFilter, filters.NamePattern, err)
		}
		s.nameRE = re
	}
	if filters.JournalPattern != "" {
		re, err := regexp.Compile(filters.JournalPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: journal pattern %q: %v", ErrInvalidFilter, filters.JournalPattern, err)
		}
		s.journalRE = re
	}
	if filters.SizeGB != nil && *filters.SizeGB <= 0 {
		return nil, fmt.Errorf("%w: device size must be positive, got %g", ErrInvalidFilter, *filters.SizeGB)
	}
	if filters.MinJournals < 0 {
		return nil, fmt.Errorf("%w: minimum journals must be positive, got %d", ErrInvalidFilter, filters.MinJournals)
	}
	return s, nil
}

// JournalsEnabled reports whether a separate journal pool is in use
func (s *Selector) JournalsEnabled() bool {
	return s.journalRE != nil
}

// SelectDataDevices returns the catalog devices that pass every filter, in
// catalog order. The root device is a candidate like any other.
func (s *Selector) SelectDataDevices(cat *catalog.Catalog) ([]*catalog.Descriptor, error) {
	var selected []*catalog.Descriptor
	for _, d := range cat.Devices {
		ok, err := s.accept(cat.HostUUID, d)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, d)
		}
	}
	return selected, nil
}

// accept evaluates the predicates in order and stops at the first failure
func (s *Selector) accept(host string, d *catalog.Descriptor) (bool, error) {
	log := s.logger.With("host", host, "device", d.Name)

	if d.StableID.IsZero() {
		log.Debug("rejecting device without a stable identifier")
		return false, nil
	}
	log.Debug("evaluating device", "id", d.StableID)

	if s.journalRE != nil && s.journalRE.MatchString(d.Name) {
		log.Debug("rejecting because device is reserved for journals", "pattern", s.filters.JournalPattern)
		return false, nil
	}

	if s.nameRE != nil && !s.nameRE.MatchString(d.Name) {
		log.Debug("rejecting because name does not match pattern", "pattern", s.filters.NamePattern)
		return false, nil
	}

	if s.filters.SizeGB != nil {
		size, err := d.SizeGB()
		if err != nil {
			return false, fieldError(host, d.Name, "size", err)
		}
		want := *s.filters.SizeGB
		if size <= 0 {
			log.Debug("rejecting because device reports no size", "size_gb", size)
			return false, nil
		}
		if math.Abs((size-want)/size) > SizeTolerance {
			log.Debug("rejecting because size differs from requested size",
				"size", humanize.Bytes(uint64(size*1e9)), "want", humanize.Bytes(uint64(want*1e9)))
			return false, nil
		}
	}

	if s.filters.Rotational != nil {
		rot, err := d.IsRotational()
		if err != nil {
			return false, fieldError(host, d.Name, "rotational", err)
		}
		if rot != *s.filters.Rotational {
			log.Debug("rejecting because rotational flag differs", "rotational", rot, "want", *s.filters.Rotational)
			return false, nil
		}
	}

	return true, nil
}

func fieldError(host, device, field string, err error) error {
	cause := ErrMissingField
	if errors.Is(err, inventory.ErrFieldMalformed) {
		cause = ErrMalformedField
	}
	return &FieldError{Host: host, Device: device, Field: field, Err: cause}
}

// SelectJournalCandidates returns the stable ids of devices whose name matches
// the journal pattern. The root device is evaluated again after the catalog
// devices, so it can appear twice. Returns nil when journals are co-located.
func (s *Selector) SelectJournalCandidates(cat *catalog.Catalog) []catalog.StableID {
	if s.journalRE == nil {
		return nil
	}

	candidates := make([]*catalog.Descriptor, 0, len(cat.Devices)+1)
	candidates = append(candidates, cat.Devices...)
	if cat.Root != nil {
		candidates = append(candidates, cat.Root)
	}

	var pool []catalog.StableID
	for _, d := range candidates {
		if d.StableID.IsZero() {
			continue
		}
		if !s.journalRE.MatchString(d.Name) {
			s.logger.Debug("not a journal device", "host", cat.HostUUID, "device", d.Name, "pattern", s.filters.JournalPattern)
			continue
		}
		pool = append(pool, d.StableID)
	}
	return pool
}

// CheckJournalMinimum fails when a journal pattern and minimum are both
// configured and the pool is smaller. Without a pattern journals are
// co-located and the minimum does not apply.
func (s *Selector) CheckJournalMinimum(host string, pool []catalog.StableID) error {
	if !s.JournalsEnabled() || s.filters.MinJournals <= 0 {
		return nil
	}
	if len(pool) < s.filters.MinJournals {
		return &JournalError{Host: host, Found: len(pool), Want: s.filters.MinJournals}
	}
	return nil
}
