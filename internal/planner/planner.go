package planner

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sigreer/osdgen/internal/catalog"
	"github.com/sigreer/osdgen/internal/inventory"
	"github.com/sigreer/osdgen/internal/selection"
)

// HostPlan is the device assignment computed for one host
type HostPlan struct {
	HostUUID    string
	Catalog     *catalog.Catalog
	JournalPool []catalog.StableID
	Assignments []selection.Assignment
}

// HasOutput reports whether any data device was selected
func (p *HostPlan) HasOutput() bool {
	return len(p.Assignments) > 0
}

// Role describes how a catalog device is used by the plan
func (p *HostPlan) Role(d *catalog.Descriptor) string {
	for _, a := range p.Assignments {
		if a.Device == d {
			return "data"
		}
	}
	for _, id := range p.JournalPool {
		if id == d.StableID {
			return "journal"
		}
	}
	return "unused"
}

// Result holds the plans of every host in input order
type Result struct {
	Hosts []*HostPlan
	// Selected is the total number of data devices across hosts
	Selected int
}

// HostsWithOutput counts hosts that will get a manifest
func (r *Result) HostsWithOutput() int {
	n := 0
	for _, h := range r.Hosts {
		if h.HasOutput() {
			n++
		}
	}
	return n
}

// Planner runs catalog building, selection and pairing over hosts
type Planner struct {
	selector *selection.Selector
	logger   *slog.Logger
}

// New creates a planner for the given filters
func New(filters selection.Filters, logger *slog.Logger) (*Planner, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sel, err := selection.New(filters, logger)
	if err != nil {
		return nil, err
	}
	return &Planner{selector: sel, logger: logger}, nil
}

// PlanHost computes the plan for a single record
func (p *Planner) PlanHost(rec *inventory.HostRecord) (*HostPlan, error) {
	cat, err := catalog.Build(rec, p.logger)
	if err != nil {
		return nil, err
	}

	pool := p.selector.SelectJournalCandidates(cat)
	if err := p.selector.CheckJournalMinimum(cat.HostUUID, pool); err != nil {
		return nil, err
	}

	devs, err := p.selector.SelectDataDevices(cat)
	if err != nil {
		return nil, err
	}

	plan := &HostPlan{
		HostUUID:    cat.HostUUID,
		Catalog:     cat,
		JournalPool: pool,
		Assignments: selection.AssignJournals(devs, pool),
	}
	p.logger.Debug("host planned", "host", plan.HostUUID,
		"devices", cat.Len(), "selected", len(plan.Assignments), "journals", len(pool))
	return plan, nil
}

// Plan computes every host before returning. Any error aborts the whole
// run so no host gets output from a partially valid configuration.
func (p *Planner) Plan(records []*inventory.HostRecord) (*Result, error) {
	res := &Result{Hosts: make([]*HostPlan, 0, len(records))}
	for _, rec := range records {
		plan, err := p.PlanHost(rec)
		if err != nil {
			return nil, fmt.Errorf("planning host: %w", err)
		}
		res.Hosts = append(res.Hosts, plan)
		res.Selected += len(plan.Assignments)
	}
	return res, nil
}
