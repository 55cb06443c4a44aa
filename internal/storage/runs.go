package storage

import (
	"errors"
	"sync"
	"time"

	"meetsum/internal/model"
)

// ErrRunNotFound is returned by RunStore.Get for unknown or evicted runs
var ErrRunNotFound = errors.New("run not found")

// RunStore keeps the most recent runs in memory for status lookups.
// The oldest run is evicted once the limit is reached.
type RunStore struct {
	mu    sync.Mutex
	runs  map[string]*model.Run
	order []string
	limit int
}

func NewRunStore(limit int) *RunStore {
	if limit <= 0 {
		limit = 100
	}
	return &RunStore{
		runs:  make(map[string]*model.Run),
		limit: limit,
	}
}

// Save stores a copy of run, replacing any entry with the same id
func (s *RunStore) Save(run *model.Run) {
	if run == nil || run.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(run.Clone())
}

// UpdateStatus records an in-flight transition so a run can be polled
// before it finishes.
func (s *RunStore) UpdateStatus(st model.Status) {
	if st.RunID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[st.RunID]
	if !ok {
		run = &model.Run{ID: st.RunID, StartedAt: st.At}
		s.putLocked(run)
	}
	run.State = st.State
	run.History = append(run.History, st)
}

// Get retrieves a copy of a run by id
func (s *RunStore) Get(id string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Clone(), nil
}

// Latest returns a copy of the most recently stored run, or nil
func (s *RunStore) Latest() *model.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil
	}
	return s.runs[s.order[len(s.order)-1]].Clone()
}

// Len returns the number of runs held
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

func (s *RunStore) putLocked(run *model.Run) {
	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	s.runs[run.ID] = run

	for len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
}
