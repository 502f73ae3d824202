package store

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/benchmark"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/classify"
	"github.com/danielpatrickdp/industry-benchmark/go-engine/internal/corpus"
)

// ErrRunNotFound is returned when no run matches the lookup.
var ErrRunNotFound = errors.New("run not found")

// #region run

// Run is one persisted analysis. Runs are never edited: a newer run for the
// same company points the older one at itself through SupersededBy.
type Run struct {
	RunID          string           `json:"run_id"`
	Company        string           `json:"company"`
	SnapshotHash   string           `json:"snapshot_hash"`
	Snapshot       corpus.Snapshot  `json:"snapshot"`
	Classification classify.Result  `json:"classification"`
	Report         benchmark.Report `json:"report"`
	SupersededBy   string           `json:"superseded_by,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Current reports whether no newer run replaced this one.
func (r Run) Current() bool {
	return r.SupersededBy == ""
}

// #endregion run
