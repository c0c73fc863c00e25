package introspection

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// DefaultCommand is the OpenStack client binary
const DefaultCommand = "openstack"

// Source lists bare-metal nodes and fetches their introspection data
type Source interface {
	ListNodes(ctx context.Context) ([]string, error)
	FetchRecord(ctx context.Context, nodeUUID string) ([]byte, error)
}

// OpenStackCLI implements Source with the openstack client. Credentials come
// from the environment (stackrc).
type OpenStackCLI struct {
	Command string
	Logger  *slog.Logger
}

// NewOpenStackCLI creates a source using the given client binary
func NewOpenStackCLI(command string, logger *slog.Logger) *OpenStackCLI {
	if command == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpenStackCLI{Command: command, Logger: logger}
}

// ListNodes runs 'openstack baremetal node list'
func (c *OpenStackCLI) ListNodes(ctx context.Context) ([]string, error) {
	c.Logger.Info("asking openstack for list of bare metal hosts")
	out, err := c.run(ctx, "baremetal", "node", "list", "-f", "value", "-c", "UUID")
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("raw node list", "output", string(out))
	return ParseNodeList(out), nil
}

// FetchRecord runs 'openstack baremetal introspection data save <uuid>'
func (c *OpenStackCLI) FetchRecord(ctx context.Context, nodeUUID string) ([]byte, error) {
	c.Logger.Info("querying introspection data", "host", nodeUUID)
	out, err := c.run(ctx, "baremetal", "introspection", "data", "save", nodeUUID)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("raw introspection data", "host", nodeUUID, "bytes", len(out))
	return out, nil
}

func (c *OpenStackCLI) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", c.Command, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", c.Command, strings.Join(args, " "), err)
	}
	return out, nil
}

// ParseNodeList extracts node UUIDs from either '-f value' output or the
// default table output. Header and border rows are skipped.
func ParseNodeList(out []byte) []string {
	var nodes []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var field string
		if strings.HasPrefix(line, "|") {
			cols := strings.Split(line, "|")
			if len(cols) < 2 {
				continue
			}
			field = strings.TrimSpace(cols[1])
		} else {
			field = strings.Fields(line)[0]
		}

		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		s := id.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		nodes = append(nodes, s)
	}
	return nodes
}
