package introspection

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sigreer/osdgen/internal/inventory"
)

// RecordStore caches the node list and raw introspection documents
type RecordStore interface {
	NodeList() ([]string, error)
	SaveNodeList(nodes []string) error
	Record(nodeUUID string) ([]byte, bool, error)
	SaveRecord(nodeUUID string, data []byte) error
	PurgeRecords() (int64, error)
}

// Loader fetches host records through a Source, caching them in a RecordStore.
// With Reuse set, cached data from an earlier run is used instead of asking
// the Source again.
type Loader struct {
	Source Source
	Store  RecordStore
	Reuse  bool
	Logger *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

// Nodes returns the host list, from the cache when reuse is enabled
func (l *Loader) Nodes(ctx context.Context) ([]string, error) {
	if l.Reuse {
		nodes, err := l.Store.NodeList()
		if err != nil {
			return nil, fmt.Errorf("failed to read cached node list: %w", err)
		}
		if len(nodes) > 0 {
			l.logger().Info("reusing cached node list", "nodes", len(nodes))
			return nodes, nil
		}
	}

	nodes, err := l.Source.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	if err := l.Store.SaveNodeList(nodes); err != nil {
		return nil, fmt.Errorf("failed to cache node list: %w", err)
	}
	return nodes, nil
}

// RawRecord returns the introspection document of a host. Empty cached
// documents are treated as absent.
func (l *Loader) RawRecord(ctx context.Context, nodeUUID string) ([]byte, error) {
	if l.Reuse {
		data, ok, err := l.Store.Record(nodeUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached record for %s: %w", nodeUUID, err)
		}
		if ok && len(data) > 0 {
			l.logger().Debug("reusing saved introspection data", "host", nodeUUID)
			return data, nil
		}
	}

	data, err := l.Source.FetchRecord(ctx, nodeUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch introspection data for %s: %w", nodeUUID, err)
	}
	if err := l.Store.SaveRecord(nodeUUID, data); err != nil {
		return nil, fmt.Errorf("failed to cache record for %s: %w", nodeUUID, err)
	}
	return data, nil
}

// LoadHost returns the parsed record of one host
func (l *Loader) LoadHost(ctx context.Context, nodeUUID string) (*inventory.HostRecord, error) {
	data, err := l.RawRecord(ctx, nodeUUID)
	if err != nil {
		return nil, err
	}
	return inventory.ParseHostRecord(nodeUUID, data)
}

// Load returns the parsed records of every host in node list order. Without
// reuse, records saved by earlier runs are purged first.
func (l *Loader) Load(ctx context.Context) ([]*inventory.HostRecord, error) {
	if !l.Reuse {
		n, err := l.Store.PurgeRecords()
		if err != nil {
			return nil, fmt.Errorf("failed to purge saved records: %w", err)
		}
		if n > 0 {
			l.logger().Info("removed old saved introspection data", "records", n)
		}
	}

	nodes, err := l.Nodes(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*inventory.HostRecord, 0, len(nodes))
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := l.LoadHost(ctx, node)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
