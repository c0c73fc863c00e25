package report

import (
	"github.com/sigreer/osdgen/internal/catalog"
	"github.com/sigreer/osdgen/internal/planner"
)

// SummaryView is the JSON form of a run summary
type SummaryView struct {
	Hosts    []HostSummary `json:"hosts"`
	Selected int           `json:"selected"`
}

// HostSummary is one host of a SummaryView
type HostSummary struct {
	UUID   string    `json:"uuid"`
	Output bool      `json:"output"`
	OSDs   []OSDView `json:"osds"`
}

// OSDView is one data device with its journal
type OSDView struct {
	Device  string `json:"device"`
	Path    string `json:"path"`
	Journal string `json:"journal,omitempty"`
}

// HostView is the JSON form of a host plan
type HostView struct {
	UUID        string       `json:"uuid"`
	JournalPool []string     `json:"journal_pool"`
	Devices     []DeviceView `json:"devices"`
	OSDs        []OSDView    `json:"osds"`
}

// DeviceView is one catalog entry
type DeviceView struct {
	Name       string   `json:"name"`
	StableID   string   `json:"stable_id"`
	Path       string   `json:"path"`
	SizeGB     *float64 `json:"size_gb,omitempty"`
	Rotational *bool    `json:"rotational,omitempty"`
	Root       bool     `json:"root"`
	Source     string   `json:"source"`
	Role       string   `json:"role"`
}

// Summary converts a planner result to its JSON view
func Summary(res *planner.Result) SummaryView {
	view := SummaryView{Hosts: make([]HostSummary, 0, len(res.Hosts)), Selected: res.Selected}
	for _, h := range res.Hosts {
		view.Hosts = append(view.Hosts, HostSummary{
			UUID:   h.HostUUID,
			Output: h.HasOutput(),
			OSDs:   osdViews(h),
		})
	}
	return view
}

// Host converts a host plan to its JSON view
func Host(plan *planner.HostPlan) HostView {
	view := HostView{
		UUID:        plan.HostUUID,
		JournalPool: make([]string, 0, len(plan.JournalPool)),
		Devices:     make([]DeviceView, 0, plan.Catalog.Len()),
		OSDs:        osdViews(plan),
	}
	for _, id := range plan.JournalPool {
		view.JournalPool = append(view.JournalPool, id.Path())
	}
	for _, d := range plan.Catalog.Devices {
		view.Devices = append(view.Devices, deviceView(plan, d))
	}
	return view
}

func osdViews(plan *planner.HostPlan) []OSDView {
	out := make([]OSDView, 0, len(plan.Assignments))
	for _, a := range plan.Assignments {
		out = append(out, OSDView{
			Device:  a.Device.Name,
			Path:    a.DevicePath(),
			Journal: a.JournalPath(),
		})
	}
	return out
}

func deviceView(plan *planner.HostPlan, d *catalog.Descriptor) DeviceView {
	v := DeviceView{
		Name:     d.Name,
		StableID: d.StableID.String(),
		Path:     d.StableID.Path(),
		Root:     d.Root,
		Source:   string(d.Source),
		Role:     plan.Role(d),
	}
	if gb, err := d.SizeGB(); err == nil {
		v.SizeGB = &gb
	}
	if rot, err := d.IsRotational(); err == nil {
		v.Rotational = &rot
	}
	return v
}
