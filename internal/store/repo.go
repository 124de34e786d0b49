package store

import (
	"context"
	"time"

	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/xapi"
)

// SavedState is the persisted state of one content item.
type SavedState struct {
	ContentID string
	State     *state.PersistedState
	UpdatedAt time.Time
}

// SavedStateInfo describes a saved state without decoding it.
type SavedStateInfo struct {
	ContentID string
	ViewState state.ViewState
	UpdatedAt time.Time
}

// StateRepo persists resumable set state, one row per content item.
type StateRepo interface {
	// Save replaces the saved state of contentID.
	Save(ctx context.Context, contentID string, ps state.PersistedState) error

	// Load returns the saved state of contentID, or nil if none exists.
	// A row that cannot be decoded is reported as an error.
	Load(ctx context.Context, contentID string) (*SavedState, error)

	// Delete removes the saved state. It reports whether a row existed.
	Delete(ctx context.Context, contentID string) (bool, error)

	// List returns every saved state, most recently updated first.
	List(ctx context.Context) ([]SavedStateInfo, error)
}

// StoredStatement is one analytics record in the statement log.
type StoredStatement struct {
	Sequence        int64
	ContentID       string
	StatementID     string
	ObjectID        string
	InteractionType string
	Registration    string
	ScoreRaw        *float64
	ScoreMax        *float64
	EmittedAt       time.Time
	Data            xapi.Data
}

// QueryOpts configures statement queries.
type QueryOpts struct {
	ContentID string // only this content (empty = all)
	Limit     int    // most recent N (0 = unlimited)
}

// StatementRepo is the append-only statement log.
type StatementRepo interface {
	// Append stores a record triggered for contentID. batchSeq is the
	// record's position within its run and breaks timestamp ties.
	Append(ctx context.Context, contentID string, batchSeq int64, data xapi.Data) (int64, error)

	// List returns records in emission order.
	List(ctx context.Context, opts QueryOpts) ([]StoredStatement, error)
}
