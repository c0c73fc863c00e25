package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sigreer/osdgen/internal/inventory"
	"github.com/sigreer/osdgen/internal/planner"
	"github.com/sigreer/osdgen/internal/selection"
)

const hostUUID = "0b1d5f7c-4c2e-4a8e-9d55-6a8f3c7b2e10"

const osdHost = `{
	"root_disk": {"name": "/dev/sda", "size": 240057409536, "rotational": false},
	"extra": {"disk": {
		"sdd": {"size": "1800", "rotational": "1"},
		"sdb": {"size": "1800", "rotational": "1", "wwn-id": "wwn-B"},
		"nvme0n1": {"size": "400", "rotational": "0", "wwn-id": "nvme-0"}
	}}
}`

type environment struct {
	ResourceRegistry  map[string]string `yaml:"resource_registry"`
	ParameterDefaults struct {
		NodeDataLookup string `yaml:"NodeDataLookup"`
	} `yaml:"parameter_defaults"`
}

type osdEntry struct {
	Journal string `json:"journal"`
}

func planFor(t *testing.T, doc string, filters selection.Filters) *planner.HostPlan {
	t.Helper()
	rec, err := inventory.ParseHostRecord(hostUUID, []byte(doc))
	require.NoError(t, err)
	p, err := planner.New(filters, nil)
	require.NoError(t, err)
	plan, err := p.PlanHost(rec)
	require.NoError(t, err)
	return plan
}

func sizeFilter() selection.Filters {
	size := 1800.0
	return selection.Filters{SizeGB: &size, JournalPattern: "nvme"}
}

func TestRenderIsValidEnvironment(t *testing.T) {
	plan := planFor(t, osdHost, sizeFilter())

	out, err := Render(plan)
	require.NoError(t, err)

	var env environment
	require.NoError(t, yaml.Unmarshal(out, &env))
	assert.Equal(t, PreDeployTemplate, env.ResourceRegistry[PreDeployResource])

	var lookup map[string]map[string]map[string]osdEntry
	require.NoError(t, json.Unmarshal([]byte(env.ParameterDefaults.NodeDataLookup), &lookup))

	osds := lookup[hostUUID][OSDsParameter]
	require.Len(t, osds, 2)
	assert.Equal(t, "/dev/disk/by-id/nvme-0", osds["/dev/sdd"].Journal)
	assert.Equal(t, "/dev/disk/by-id/nvme-0", osds["/dev/disk/by-id/wwn-B"].Journal)
}

func TestRenderKeepsSelectionOrder(t *testing.T) {
	plan := planFor(t, osdHost, sizeFilter())

	out, err := Render(plan)
	require.NoError(t, err)

	text := string(out)
	sdd := strings.Index(text, `"/dev/sdd"`)
	sdb := strings.Index(text, `"/dev/disk/by-id/wwn-B"`)
	require.NotEqual(t, -1, sdd)
	require.NotEqual(t, -1, sdb)
	assert.Less(t, sdd, sdb)

	assert.Contains(t, text, "# sdd: /dev/sdd journal=/dev/disk/by-id/nvme-0")
	assert.Contains(t, text, "NodeDataLookup: |")
}

func TestRenderColocatedJournal(t *testing.T) {
	size := 1800.0
	plan := planFor(t, osdHost, selection.Filters{SizeGB: &size})

	lookup, err := NodeDataLookup(plan)
	require.NoError(t, err)

	var parsed map[string]map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lookup), &parsed))
	osds := parsed[hostUUID][OSDsParameter]
	require.Len(t, osds, 2)
	assert.Empty(t, osds["/dev/sdd"])
	assert.NotContains(t, lookup, "journal")
}

func TestRenderIsDeterministic(t *testing.T) {
	first, err := Render(planFor(t, osdHost, sizeFilter()))
	require.NoError(t, err)
	second, err := Render(planFor(t, osdHost, sizeFilter()))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriterWritesOnlyHostsWithOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	w := NewWriter(dir, nil)

	path, err := w.Write(planFor(t, osdHost, sizeFilter()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, hostUUID+FileSuffix), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := Render(planFor(t, osdHost, sizeFilter()))
	require.NoError(t, err)
	assert.Equal(t, expected, data)

	empty := `{"root_disk": {"name": "/dev/sda"}, "extra": {"disk": {"sda": {"size": "240", "rotational": "0"}}}}`
	size := 4000.0
	path, err = w.Write(planFor(t, empty, selection.Filters{SizeGB: &size}))
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hostUUID+FileSuffix, entries[0].Name())
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_devices.yaml", "b_devices.yaml", ".osdgen-123.tmp", "osdgen.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	w := NewWriter(dir, nil)
	removed, err := w.RemoveStale()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a_devices.yaml", "b_devices.yaml", ".osdgen-123.tmp"}, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"osdgen.db", "notes.txt"}, left)
}

func TestRemoveStaleMissingDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "absent"), nil)
	removed, err := w.RemoveStale()
	require.NoError(t, err)
	assert.Empty(t, removed)
}
