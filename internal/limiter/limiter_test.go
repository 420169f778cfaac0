package limiter

import (
	"context"
	"sync"
	"testing"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBlocksAtLimit(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)
	key := Key{AttendanceID: 1, ClientAddr: "10.0.0.1"}

	for i := 0; i < 4; i++ {
		s.Record(key, OutcomeFailure)
		if blocked, _ := s.Check(key); blocked {
			t.Fatalf("blocked after %d failures", i+1)
		}
	}

	s.Record(key, OutcomeFailure)
	blocked, retryAfter := s.Check(key)
	if !blocked {
		t.Fatal("not blocked after 5 failures")
	}
	if retryAfter <= 0 || retryAfter > 15*time.Minute {
		t.Fatalf("retryAfter = %v, want within window", retryAfter)
	}
}

func TestWindowSlides(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)
	key := Key{AttendanceID: 1, ClientAddr: "10.0.0.1"}

	// Two early failures, then three more ten minutes later.
	s.Record(key, OutcomeFailure)
	s.Record(key, OutcomeFailure)
	clock.Advance(10 * time.Minute)
	for i := 0; i < 3; i++ {
		s.Record(key, OutcomeFailure)
	}
	if blocked, _ := s.Check(key); !blocked {
		t.Fatal("not blocked with 5 failures in window")
	}

	// Six more minutes age the first two out; only three remain.
	clock.Advance(6 * time.Minute)
	if blocked, _ := s.Check(key); blocked {
		t.Fatal("still blocked after old failures aged out")
	}
}

func TestSuccessResets(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)
	key := Key{AttendanceID: 1, ClientAddr: "10.0.0.1"}

	for i := 0; i < 5; i++ {
		s.Record(key, OutcomeFailure)
	}
	if blocked, _ := s.Check(key); !blocked {
		t.Fatal("not blocked at limit")
	}

	s.Record(key, OutcomeSuccess)
	if blocked, _ := s.Check(key); blocked {
		t.Fatal("still blocked after success reset")
	}
}

func TestOverrideRequestNotCounted(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)
	key := Key{AttendanceID: 1, ClientAddr: "10.0.0.1"}

	for i := 0; i < 4; i++ {
		s.Record(key, OutcomeFailure)
	}
	for i := 0; i < 10; i++ {
		s.Record(key, OutcomeOverrideRequested)
	}
	if blocked, _ := s.Check(key); blocked {
		t.Fatal("override requests counted toward the limit")
	}
}

func TestKeysIndependent(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)
	a := Key{AttendanceID: 1, ClientAddr: "10.0.0.1"}
	b := Key{AttendanceID: 1, ClientAddr: "10.0.0.2"}
	c := Key{AttendanceID: 2, ClientAddr: "10.0.0.1"}

	for i := 0; i < 5; i++ {
		s.Record(a, OutcomeFailure)
	}
	if blocked, _ := s.Check(a); !blocked {
		t.Fatal("key a not blocked")
	}
	if blocked, _ := s.Check(b); blocked {
		t.Fatal("key b blocked by key a's failures")
	}
	if blocked, _ := s.Check(c); blocked {
		t.Fatal("key c blocked by key a's failures")
	}
}

func TestCompactDropsExpiredEntries(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)

	for i := int64(1); i <= 10; i++ {
		s.Record(Key{AttendanceID: i, ClientAddr: "10.0.0.1"}, OutcomeFailure)
	}
	clock.Advance(20 * time.Minute)
	s.Compact()

	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	if n != 0 {
		t.Fatalf("%d entries survive compaction, want 0", n)
	}
}

func TestSweepCompactsInBackground(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)

	for i := int64(1); i <= 100; i++ {
		s.Record(Key{AttendanceID: i, ClientAddr: "10.0.0.1"}, OutcomeFailure)
	}
	clock.Advance(24 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Sweep(ctx, time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		n := len(s.entries)
		s.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("aged-out entries were never swept")
}

func TestConcurrentRecordAndCheck(t *testing.T) {
	clock := newTestClock()
	s := NewStore(5, 15*time.Minute, clock.Now)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			key := Key{AttendanceID: n % 4, ClientAddr: "10.0.0.1"}
			for j := 0; j < 50; j++ {
				s.Record(key, OutcomeFailure)
				s.Check(key)
				if j%10 == 0 {
					s.Record(key, OutcomeSuccess)
				}
			}
		}(int64(i))
	}
	wg.Wait()
}
