package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func loadSnapshots(paths []string) ([]corpus.Snapshot, error) {
	snaps := make([]corpus.Snapshot, 0, len(paths))
	for _, p := range paths {
		s, err := corpus.LoadSnapshot(p)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// scopeToEntity narrows each snapshot's inventory to one entity. An empty
// entity leaves the snapshots untouched.
func scopeToEntity(snaps []corpus.Snapshot, entity string) []corpus.Snapshot {
	if entity == "" {
		return snaps
	}
	out := make([]corpus.Snapshot, len(snaps))
	for i, s := range snaps {
		s.Inventory = corpus.Inventory{Items: s.Inventory.ForEntity(entity)}
		out[i] = s
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
