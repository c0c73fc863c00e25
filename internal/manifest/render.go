package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sigreer/osdgen/internal/planner"
)

const (
	// PreDeployResource runs the per-node hieradata template before deployment
	PreDeployResource = "OS::TripleO::CephStorageExtraConfigPre"
	PreDeployTemplate = "tripleo-heat-templates/puppet/extraconfig/pre_deploy/per_node.yaml"

	// OSDsParameter is the puppet-ceph hash of OSD devices
	OSDsParameter = "ceph::profile::params::osds"
)

// NodeDataLookup renders the per-node hieradata JSON, keeping selection order
func NodeDataLookup(plan *planner.HostPlan) (string, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')
	if err := writeKey(&buf, plan.HostUUID); err != nil {
		return "", err
	}
	buf.WriteByte('{')
	if err := writeKey(&buf, OSDsParameter); err != nil {
		return "", err
	}
	buf.WriteByte('{')
	for i, a := range plan.Assignments {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, a.DevicePath()); err != nil {
			return "", err
		}
		if !a.HasJournal() {
			buf.WriteString("{}")
			continue
		}
		buf.WriteByte('{')
		if err := writeKey(&buf, "journal"); err != nil {
			return "", err
		}
		if err := writeString(&buf, a.JournalPath()); err != nil {
			return "", err
		}
		buf.WriteByte('}')
	}
	buf.WriteString("}}}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", fmt.Errorf("failed to format node data: %w", err)
	}
	return out.String(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	if err := writeString(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Render produces the Heat environment file for one host
func Render(plan *planner.HostPlan) ([]byte, error) {
	lookup, err := NodeDataLookup(plan)
	if err != nil {
		return nil, err
	}

	lookupKey := scalar("NodeDataLookup")
	lookupKey.HeadComment = deviceComment(plan)
	lookupValue := scalar(lookup)
	lookupValue.Style = yaml.LiteralStyle

	doc := &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{
			mapping(
				scalar("resource_registry"), mapping(scalar(PreDeployResource), scalar(PreDeployTemplate)),
				scalar("parameter_defaults"), mapping(lookupKey, lookupValue),
			),
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to render manifest for %s: %w", plan.HostUUID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deviceComment lists the kernel names behind each rendered path
func deviceComment(plan *planner.HostPlan) string {
	lines := make([]string, 0, len(plan.Assignments))
	for _, a := range plan.Assignments {
		line := fmt.Sprintf("# %s: %s", a.Device.Name, a.DevicePath())
		if a.HasJournal() {
			line += " journal=" + a.JournalPath()
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}
