// Package history records every outbound API call into a bounded,
// persisted, most-recent-first list. Testers use it as an audit trail, so
// each completed or failed call must appear exactly once, and logging must
// never be allowed to break the feature it is instrumenting: persistence
// failures are swallowed.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StorageKey is the fixed key the serialized history is persisted under.
const StorageKey = "qa-testbed-request-history"

// MaxItems caps the history length; the oldest entry is evicted when a new
// one would exceed it.
const MaxItems = 100

// Item is one recorded API call. Items are never mutated after creation.
type Item struct {
	ID           string          `json:"id"`
	Method       string          `json:"method"`
	Endpoint     string          `json:"endpoint"`
	URL          string          `json:"url"`
	Status       int             `json:"status,omitempty"`
	Success      bool            `json:"success"`
	DurationMs   int64           `json:"duration"`
	Timestamp    time.Time       `json:"timestamp"`
	RequestBody  json.RawMessage `json:"requestBody,omitempty"`
	ResponseBody json.RawMessage `json:"responseBody,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// valid reports whether a loaded entry carries the required fields. Entries
// failing this are dropped on load rather than poisoning the list.
func (i Item) valid() bool {
	return i.ID != "" && i.Endpoint != "" && !i.Timestamp.IsZero()
}

// Store persists the serialized history under a key. Load returns nil data
// (no error) when the key is absent.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Recorder is the request logger. Safe for concurrent use; prepends are
// serialized under one mutex, so completion order decides list order.
type Recorder struct {
	mu    sync.Mutex
	items []Item
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewRecorder builds a Recorder and restores any persisted history from
// store. Corrupt persisted state is discarded, never fatal.
func NewRecorder(store Store, log zerolog.Logger) *Recorder {
	r := &Recorder{store: store, log: log, now: time.Now}
	r.load()
	return r
}

func (r *Recorder) load() {
	data, err := r.store.Load(context.Background(), StorageKey)
	if err != nil {
		r.log.Debug().Err(err).Msg("request history load failed")
		return
	}
	if len(data) == 0 {
		return
	}

	var stored []Item
	if err := json.Unmarshal(data, &stored); err != nil {
		r.log.Debug().Err(err).Msg("discarding corrupt request history")
		return
	}

	items := make([]Item, 0, len(stored))
	for _, it := range stored {
		if it.valid() {
			items = append(items, it)
		}
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	r.items = items
}

// Add stamps an id and timestamp, prepends the item, truncates to MaxItems,
// and persists. Persistence errors are swallowed.
func (r *Recorder) Add(item Item) {
	item.ID = uuid.NewString()
	item.Timestamp = r.now().UTC()

	r.mu.Lock()
	r.items = append([]Item{item}, r.items...)
	if len(r.items) > MaxItems {
		r.items = r.items[:MaxItems]
	}
	snapshot := make([]Item, len(r.items))
	copy(snapshot, r.items)
	r.mu.Unlock()

	r.persist(snapshot)
}

// Clear empties the list and removes persisted state.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()

	if err := r.store.Delete(context.Background(), StorageKey); err != nil {
		r.log.Debug().Err(err).Msg("request history delete failed")
	}
}

// Items returns a copy of the history, most recent first.
func (r *Recorder) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the current number of entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Recorder) persist(items []Item) {
	data, err := json.Marshal(items)
	if err != nil {
		r.log.Debug().Err(err).Msg("request history marshal failed")
		return
	}
	if err := r.store.Save(context.Background(), StorageKey, data); err != nil {
		r.log.Debug().Err(err).Msg("request history save failed")
	}
}
