package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// #region snapshot

// Snapshot is the immutable input for one company. Nothing downstream
// mutates it.
type Snapshot struct {
	Profile   Profile   `json:"profile"`
	Facts     []Fact    `json:"facts"`
	Inventory Inventory `json:"inventory"`
	Org       OrgData   `json:"org"`
}

// Hash returns the hex sha256 of the snapshot's JSON encoding. encoding/json
// sorts map keys, so equal snapshots hash equally.
func (s Snapshot) Hash() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// LoadSnapshot reads a JSON snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return s, nil
}

// #endregion snapshot
