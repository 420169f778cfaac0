package limiter

import (
	"context"
	"sync"
	"time"
)

// Outcome classifies one pickup-verification attempt. Only genuine failures
// (wrong code, not on the authorized list) count against the window; a
// requested supervisor override is a legitimate emergency path and does not.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeOverrideRequested
)

// Key identifies one counter: the attendance record under verification and
// the client address attempting it.
type Key struct {
	AttendanceID int64
	ClientAddr   string
}

// Store counts verification failures per key in a sliding window. Keys are
// independent; the store-level mutex only guards the map, each entry locks
// itself. State is in-process only and lost on restart, which is acceptable
// for a brute-force gate.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry

	limit  int
	window time.Duration
	clock  func() time.Time
}

type entry struct {
	mu       sync.Mutex
	failures []time.Time
}

func NewStore(limit int, window time.Duration, clock func() time.Time) *Store {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		entries: make(map[Key]*entry),
		limit:   limit,
		window:  window,
		clock:   clock,
	}
}

// Check reports whether the key is currently blocked and, if so, how long
// until the oldest failure ages out of the window.
func (s *Store) Check(key Key) (blocked bool, retryAfter time.Duration) {
	e := s.peek(key)
	if e == nil {
		return false, 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock()
	e.trim(now, s.window)

	if len(e.failures) < s.limit {
		return false, 0
	}

	oldest := e.failures[0]
	return true, oldest.Add(s.window).Sub(now)
}

// Record applies one attempt outcome. A success resets the counter; an
// override request leaves it untouched.
func (s *Store) Record(key Key, outcome Outcome) {
	switch outcome {
	case OutcomeSuccess:
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	case OutcomeFailure:
		e := s.fetch(key)
		e.mu.Lock()
		now := s.clock()
		e.trim(now, s.window)
		e.failures = append(e.failures, now)
		e.mu.Unlock()
	case OutcomeOverrideRequested:
		// deliberately not counted
	}
}

// Sweep runs Compact every interval until ctx is cancelled. The owner of
// the store starts it in its own goroutine.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.window
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Compact()
		}
	}
}

// Compact drops entries whose failures have all aged out. Swept
// periodically so Sunday-morning keys do not accumulate for a week.
func (s *Store) Compact() {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		e.mu.Lock()
		e.trim(now, s.window)
		empty := len(e.failures) == 0
		e.mu.Unlock()

		if empty {
			delete(s.entries, key)
		}
	}
}

func (s *Store) fetch(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

func (s *Store) peek(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key]
}

// trim drops failures older than the window. Caller holds e.mu.
func (e *entry) trim(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(e.failures) && !e.failures[i].After(cutoff) {
		i++
	}
	if i > 0 {
		e.failures = append(e.failures[:0], e.failures[i:]...)
	}
}
