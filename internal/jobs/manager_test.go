package jobs

import (
	"errors"
	"sync"
	"testing"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()
	snap := m.Create()
	if snap.Status != StatusPending {
		t.Fatalf("new job status = %s", snap.Status)
	}
	got, err := m.Get(snap.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != snap.ID {
		t.Fatalf("mismatched IDs")
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
}

func TestManager_ProgressNeverRollsBack(t *testing.T) {
	m := NewManager()
	snap := m.Create()

	m.Update(snap.ID, func(s *Snapshot) {
		s.Status = StatusProcessing
		s.ProgressPercent = 60
	})
	got, err := m.Update(snap.ID, func(s *Snapshot) {
		s.ProgressPercent = 30 // stale write must not regress
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ProgressPercent != 60 {
		t.Fatalf("progress rolled back to %d", got.ProgressPercent)
	}
}

func TestManager_TerminalStateFrozen(t *testing.T) {
	m := NewManager()
	snap := m.Create()
	m.Update(snap.ID, func(s *Snapshot) {
		s.Status = StatusFailed
		s.FailedStage = "sceneSplit"
		s.Error = "boom"
	})
	got, _ := m.Update(snap.ID, func(s *Snapshot) {
		s.Status = StatusProcessing
		s.ProgressPercent = 99
	})
	if got.Status != StatusFailed || got.ProgressPercent != 0 {
		t.Fatalf("terminal job mutated: %+v", got)
	}
}

func TestManager_SnapshotTripleIsConsistent(t *testing.T) {
	m := NewManager()
	snap := m.Create()

	// Writers always set percent and message together; a reader must never
	// see one without the other.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := 1; p <= 100; p++ {
			pct := p
			m.Update(snap.ID, func(s *Snapshot) {
				s.Status = StatusProcessing
				s.ProgressPercent = pct
				if pct%2 == 0 {
					s.ProgressMessage = "even"
				} else {
					s.ProgressMessage = "odd"
				}
			})
		}
		close(stop)
	}()

	for {
		got, err := m.Get(snap.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status == StatusProcessing {
			even := got.ProgressPercent%2 == 0
			if even && got.ProgressMessage != "even" || !even && got.ProgressMessage != "odd" {
				t.Fatalf("torn snapshot: %+v", got)
			}
		}
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
	}
}

func TestManager_CancelPendingJob(t *testing.T) {
	m := NewManager()
	snap := m.Create()
	if err := m.Cancel(snap.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := m.Get(snap.ID)
	if got.Status != StatusCancelled {
		t.Fatalf("pending job not cancelled: %s", got.Status)
	}
	if !m.Cancelled(snap.ID) {
		t.Fatalf("cancellation flag not set")
	}
}

func TestManager_ResultOnlyWhenCompleted(t *testing.T) {
	m := NewManager()
	snap := m.Create()
	script := &types.AnimationScript{CompName: "Captions"}
	m.SetResult(snap.ID, script)

	if _, err := m.Result(snap.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	m.Update(snap.ID, func(s *Snapshot) {
		s.Status = StatusCompleted
		s.ProgressPercent = 100
	})
	got, err := m.Result(snap.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if got != script {
		t.Fatalf("wrong result returned")
	}
}
