package jobs

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// Status tracks the pipeline lifecycle of one job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ErrUnknownJob is returned for job IDs the manager has never seen.
var ErrUnknownJob = errors.New("unknown job")

// ErrNotCompleted is returned when a result is requested before completion.
var ErrNotCompleted = errors.New("job is not completed")

// Snapshot is the immutable, consistent view of one job. Status, progress
// percent, and message always change together: writers build a new Snapshot
// and swap it atomically, so a concurrent poller never observes a torn
// triple.
type Snapshot struct {
	ID              string    `json:"id"`
	Status          Status    `json:"status"`
	ProgressPercent int       `json:"progressPercent"`
	ProgressMessage string    `json:"progressMessage"`
	FailedStage     string    `json:"failedStage,omitempty"`
	Error           string    `json:"error,omitempty"`
	SceneCount      int       `json:"sceneCount,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type record struct {
	snap      atomic.Pointer[Snapshot]
	cancelled atomic.Bool

	mu     sync.Mutex // serializes writers; readers never take it
	result *types.AnimationScript
}

// Manager tracks job records. Each job is mutated by its single owning
// worker; status polls read the latest snapshot without locking.
type Manager struct {
	mu   sync.RWMutex
	recs map[string]*record
	now  func() time.Time
}

func NewManager() *Manager {
	return &Manager{recs: map[string]*record{}, now: time.Now}
}

// Create registers a new pending job and returns its snapshot.
func (m *Manager) Create() Snapshot {
	now := m.now().UTC()
	snap := Snapshot{
		ID:              uuid.NewString(),
		Status:          StatusPending,
		ProgressMessage: "queued",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	rec := &record{}
	rec.snap.Store(&snap)

	m.mu.Lock()
	m.recs[snap.ID] = rec
	m.mu.Unlock()
	return snap
}

func (m *Manager) lookup(id string) (*record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	return rec, ok
}

// Get returns the latest snapshot for a job.
func (m *Manager) Get(id string) (Snapshot, error) {
	rec, ok := m.lookup(id)
	if !ok {
		return Snapshot{}, ErrUnknownJob
	}
	return *rec.snap.Load(), nil
}

// Update applies mutate to a copy of the current snapshot and swaps the
// result in atomically. Progress is clamped so it never rolls back, and
// terminal jobs are never modified again.
func (m *Manager) Update(id string, mutate func(*Snapshot)) (Snapshot, error) {
	rec, ok := m.lookup(id)
	if !ok {
		return Snapshot{}, ErrUnknownJob
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cur := *rec.snap.Load()
	if cur.Status.Terminal() {
		return cur, nil
	}
	next := cur
	mutate(&next)
	if next.ProgressPercent < cur.ProgressPercent {
		next.ProgressPercent = cur.ProgressPercent
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = m.now().UTC()
	rec.snap.Store(&next)
	return next, nil
}

// Cancel flags a job for cancellation. The owning worker observes the flag
// between stages and before window dispatches; a pending job transitions
// immediately.
func (m *Manager) Cancel(id string) error {
	rec, ok := m.lookup(id)
	if !ok {
		return ErrUnknownJob
	}
	rec.cancelled.Store(true)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	cur := *rec.snap.Load()
	if cur.Status == StatusPending {
		next := cur
		next.Status = StatusCancelled
		next.ProgressMessage = "cancelled"
		next.UpdatedAt = m.now().UTC()
		rec.snap.Store(&next)
	}
	return nil
}

// Cancelled reports whether cancellation was requested for a job.
func (m *Manager) Cancelled(id string) bool {
	rec, ok := m.lookup(id)
	return ok && rec.cancelled.Load()
}

// SetResult stores the finished animation script for a completed job.
func (m *Manager) SetResult(id string, script *types.AnimationScript) error {
	rec, ok := m.lookup(id)
	if !ok {
		return ErrUnknownJob
	}
	rec.mu.Lock()
	rec.result = script
	rec.mu.Unlock()
	return nil
}

// Result returns the animation script of a completed job.
func (m *Manager) Result(id string) (*types.AnimationScript, error) {
	rec, ok := m.lookup(id)
	if !ok {
		return nil, ErrUnknownJob
	}
	if rec.snap.Load().Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.result, nil
}
