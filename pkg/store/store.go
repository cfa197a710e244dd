// Package store keeps a history of layout runs.
//
// Every layout served by `flowlayout serve` produces a [Run] record: what was
// laid out, how it went, and which warnings came up. Records can be listed
// newest first and looked up by id. Backends:
//   - [MemoryStore]: bounded in-process history for development and tests
//   - [FileStore]: one JSON file per run, for single-instance deployments
//   - [MongoStore]: a MongoDB collection shared by many instances
package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = stderrors.New("run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is the record of one layout request.
type Run struct {
	ID        string           `json:"id" bson:"_id"`
	Source    string           `json:"source" bson:"source"`
	DocHash   string           `json:"doc_hash,omitempty" bson:"doc_hash,omitempty"`
	StartID   string           `json:"start_id,omitempty" bson:"start_id,omitempty"`
	Nodes     int              `json:"nodes" bson:"nodes"`
	Edges     int              `json:"edges" bson:"edges"`
	Placed    int              `json:"placed" bson:"placed"`
	Unreached []string         `json:"unreached,omitempty" bson:"unreached,omitempty"`
	Warnings  []errors.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
	ErrorCode errors.Code      `json:"error_code,omitempty" bson:"error_code,omitempty"`
	Error     string           `json:"error,omitempty" bson:"error,omitempty"`
	Cached    bool             `json:"cached" bson:"cached"`
	Duration  time.Duration    `json:"duration" bson:"duration"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// NewRun builds a record from a layout outcome. res may be nil when err is
// set.
func NewRun(source, docHash string, res *layout.Result, err error) *Run {
	r := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		DocHash:   docHash,
		CreatedAt: time.Now().UTC(),
	}
	if res != nil {
		r.StartID = res.StartID
		r.Nodes = res.NodeCount
		r.Edges = res.EdgeCount
		r.Placed = len(res.Placements)
		r.Unreached = res.Unreached
		r.Warnings = res.Warnings
		r.Duration = res.Duration
	}
	if err != nil {
		r.ErrorCode = errors.GetCode(err)
		r.Error = errors.UserMessage(err)
	}
	return r
}

// OK reports whether the run produced a layout.
func (r *Run) OK() bool { return r.Error == "" }

// Store is the interface for run history backends.
type Store interface {
	// Record saves a run. The run's ID must be set.
	Record(ctx context.Context, run *Run) error

	// Get returns the run with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Cleanup removes runs created before the cutoff.
	Cleanup(ctx context.Context, before time.Time) (int, error)

	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
