package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sigreer/osdgen/internal/catalog"
	"github.com/sigreer/osdgen/internal/db"
	"github.com/sigreer/osdgen/internal/planner"
)

// PrintSummary writes the per-host OSD counts of a run
func PrintSummary(w io.Writer, res *planner.Result) {
	for _, h := range res.Hosts {
		if h.HasOutput() {
			fmt.Fprintf(w, "%s : %8d\n", h.HostUUID, len(h.Assignments))
		} else {
			fmt.Fprintf(w, "%s : no output produced\n", h.HostUUID)
		}
	}
	fmt.Fprintf(w, "%d of %d hosts produced output\n", res.HostsWithOutput(), len(res.Hosts))
	fmt.Fprintf(w, "%d OSD drives output\n", res.Selected)
}

// PrintPlan writes the catalog of one host with the role of each device
func PrintPlan(w io.Writer, plan *planner.HostPlan) {
	fmt.Fprintf(w, "Host:         %s\n", plan.HostUUID)
	fmt.Fprintf(w, "Journal Pool: %s\n", journalPool(plan.JournalPool))
	fmt.Fprintf(w, "OSDs:         %d\n", len(plan.Assignments))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-16s %-8s %-4s %-8s %-36s %s\n", "NAME", "SIZE", "ROT", "ROLE", "PATH", "JOURNAL")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	journals := make(map[*catalog.Descriptor]string)
	for _, a := range plan.Assignments {
		journals[a.Device] = a.JournalPath()
	}

	for _, d := range plan.Catalog.Devices {
		name := d.Name
		if d.Root {
			name += " (root)"
		}
		fmt.Fprintf(w, "%-16s %-8s %-4s %-8s %-36s %s\n",
			name, sizeString(d), rotationalString(d), plan.Role(d),
			orDash(d.StableID.Path()), orDash(journals[d]))
	}
}

// PrintHistory writes a recorded run and its assignments
func PrintHistory(w io.Writer, run *db.Run, rows []db.AssignmentRecord) {
	if run == nil {
		fmt.Fprintln(w, "No runs recorded")
		return
	}

	fmt.Fprintf(w, "Run:      %d\n", run.ID)
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(w, "Hosts:    %d\n", run.Hosts)
	fmt.Fprintf(w, "Selected: %d\n", run.Selected)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-36s %-10s %-36s %s\n", "HOST", "DEVICE", "PATH", "JOURNAL")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s %-10s %-36s %s\n", r.HostUUID, r.DeviceName, r.DevicePath, orDash(r.JournalPath))
	}
}

// PrintJSON outputs v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func journalPool(pool []catalog.StableID) string {
	if len(pool) == 0 {
		return "none"
	}
	paths := make([]string, len(pool))
	for i, id := range pool {
		paths[i] = id.Path()
	}
	return strings.Join(paths, ", ")
}

func sizeString(d *catalog.Descriptor) string {
	gb, err := d.SizeGB()
	if err != nil || gb <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(gb * 1e9))
}

func rotationalString(d *catalog.Descriptor) string {
	rot, err := d.IsRotational()
	if err != nil {
		return "-"
	}
	if rot {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
