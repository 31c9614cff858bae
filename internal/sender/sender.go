// Package sender publishes snapshots to optional destinations.
package sender

import (
	"context"
	"encoding/json"
	"fmt"

	"statreporter/internal/snapshot"
)

// Sender defines the interface for publishing snapshots.
type Sender interface {
	// Send publishes one snapshot.
	Send(ctx context.Context, snap *snapshot.Snapshot) error

	// Close releases any resources held by the sender.
	Close() error
}

func encode(snap *snapshot.Snapshot, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = json.Marshal(snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}
