package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FlockCheck/internal/audit"
	"FlockCheck/internal/model"
)

// In-memory store fakes. They enforce the same uniqueness rules the real
// PostgreSQL stores enforce with constraints, so concurrency tests exercise
// the services' conflict handling.

type fakeLocationStore struct {
	mu     sync.Mutex
	nextID int64
	locs   map[int64]*model.Location
}

func newFakeLocationStore() *fakeLocationStore {
	return &fakeLocationStore{locs: make(map[int64]*model.Location)}
}

func (s *fakeLocationStore) Get(ctx context.Context, id int64) (*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (s *fakeLocationStore) Create(ctx context.Context, loc *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc.ID == 0 {
		s.nextID++
		loc.ID = s.nextID
	} else if loc.ID > s.nextID {
		s.nextID = loc.ID
	}
	cp := *loc
	s.locs[loc.ID] = &cp
	return nil
}

func (s *fakeLocationStore) Update(ctx context.Context, loc *model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locs[loc.ID]; !ok {
		return ErrNotFound
	}
	cp := *loc
	s.locs[loc.ID] = &cp
	return nil
}

func (s *fakeLocationStore) List(ctx context.Context) ([]*model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Location, 0, len(s.locs))
	for _, loc := range s.locs {
		cp := *loc
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeLocationStore) add(t *model.Location) *model.Location {
	_ = s.Create(context.Background(), t)
	return t
}

type attendanceKey struct {
	personID   int64
	scheduleID int64
	date       string
}

type fakeAttendanceStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.AttendanceRecord
	byKey  map[attendanceKey]int64
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{
		byID:  make(map[int64]*model.AttendanceRecord),
		byKey: make(map[attendanceKey]int64),
	}
}

func recKey(rec *model.AttendanceRecord) attendanceKey {
	return attendanceKey{
		personID:   rec.PersonID,
		scheduleID: rec.ScheduleID,
		date:       rec.AttendanceDate.Format("2006-01-02"),
	}
}

func (s *fakeAttendanceStore) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recKey(rec)
	// The unique index is partial over checked-in rows, so a checked-out
	// record at the same key does not conflict.
	if id, ok := s.byKey[key]; ok {
		if s.byID[id].State == model.AttendanceCheckedIn {
			return ErrDuplicate
		}
	}
	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.byID[rec.ID] = &cp
	s.byKey[key] = rec.ID
	return nil
}

func (s *fakeAttendanceStore) Get(ctx context.Context, id int64) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeAttendanceStore) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; !ok {
		return ErrNotFound
	}
	cp := *rec
	s.byID[rec.ID] = &cp
	return nil
}

func (s *fakeAttendanceStore) FindCheckedIn(ctx context.Context, personID, scheduleID int64, date time.Time) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attendanceKey{personID: personID, scheduleID: scheduleID, date: date.Format("2006-01-02")}
	id, ok := s.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	rec := s.byID[id]
	if rec.State != model.AttendanceCheckedIn {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeAttendanceStore) CountCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := date.Format("2006-01-02")
	count := 0
	for _, rec := range s.byID {
		if rec.LocationID == locationID &&
			rec.ScheduleID == scheduleID &&
			rec.AttendanceDate.Format("2006-01-02") == day &&
			rec.State == model.AttendanceCheckedIn {
			count++
		}
	}
	return count, nil
}

func (s *fakeAttendanceStore) CodeExists(ctx context.Context, locationID int64, date time.Time, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := date.Format("2006-01-02")
	for _, rec := range s.byID {
		if rec.LocationID == locationID &&
			rec.AttendanceDate.Format("2006-01-02") == day &&
			rec.SecurityCode == code &&
			rec.State == model.AttendanceCheckedIn {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAttendanceStore) ListCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) ([]*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := date.Format("2006-01-02")
	var out []*model.AttendanceRecord
	for _, rec := range s.byID {
		if rec.LocationID == locationID &&
			rec.ScheduleID == scheduleID &&
			rec.AttendanceDate.Format("2006-01-02") == day &&
			rec.State == model.AttendanceCheckedIn {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// seed inserts a record directly, bypassing Create's id assignment when the
// caller fixed one.
func (s *fakeAttendanceStore) seed(rec *model.AttendanceRecord) *model.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	} else if rec.ID > s.nextID {
		s.nextID = rec.ID
	}
	cp := *rec
	s.byID[rec.ID] = &cp
	s.byKey[recKey(rec)] = rec.ID
	return rec
}

type pagerScope struct {
	number int
	campus string
	date   string
}

type fakePagerStore struct {
	mu          sync.Mutex
	nextID      int64
	assignments map[int64]*model.PagerAssignment
}

func newFakePagerStore() *fakePagerStore {
	return &fakePagerStore{assignments: make(map[int64]*model.PagerAssignment)}
}

func scopeOf(a *model.PagerAssignment) pagerScope {
	campus := "global"
	if a.CampusID != nil {
		campus = fmt.Sprintf("%d", *a.CampusID)
	}
	return pagerScope{number: a.PagerNumber, campus: campus, date: a.AssignmentDate.Format("2006-01-02")}
}

func (s *fakePagerStore) CreateAssignment(ctx context.Context, a *model.PagerAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope := scopeOf(a)
	for _, existing := range s.assignments {
		if existing.IsActive && scopeOf(existing) == scope {
			return ErrDuplicate
		}
	}
	s.nextID++
	a.ID = s.nextID
	cp := *a
	s.assignments[a.ID] = &cp
	return nil
}

func (s *fakePagerStore) GetActiveByAttendance(ctx context.Context, attendanceID int64) (*model.PagerAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.AttendanceID == attendanceID && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakePagerStore) DeactivateByAttendance(ctx context.Context, attendanceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, a := range s.assignments {
		if a.AttendanceID == attendanceID && a.IsActive {
			a.IsActive = false
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *fakePagerStore) DeactivateForDate(ctx context.Context, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := date.Format("2006-01-02")
	var n int64
	for _, a := range s.assignments {
		if a.IsActive && a.AssignmentDate.Format("2006-01-02") == day {
			a.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeSupervisorStore struct {
	mu          sync.Mutex
	nextID      int64
	supervisors map[int64]*model.Supervisor
	byPINHash   map[string]int64
	sessions    map[string]*model.SupervisorSession
}

func newFakeSupervisorStore() *fakeSupervisorStore {
	return &fakeSupervisorStore{
		supervisors: make(map[int64]*model.Supervisor),
		byPINHash:   make(map[string]int64),
		sessions:    make(map[string]*model.SupervisorSession),
	}
}

func (s *fakeSupervisorStore) addSupervisor(sup *model.Supervisor) *model.Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sup.ID == 0 {
		s.nextID++
		sup.ID = s.nextID
	}
	cp := *sup
	s.supervisors[sup.ID] = &cp
	s.byPINHash[sup.PINHash] = sup.ID
	return sup
}

func (s *fakeSupervisorStore) GetByPINHash(ctx context.Context, pinHash string) (*model.Supervisor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPINHash[pinHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.supervisors[id]
	return &cp, nil
}

func (s *fakeSupervisorStore) GetSupervisor(ctx context.Context, id int64) (*model.Supervisor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sup, ok := s.supervisors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sup
	return &cp, nil
}

func (s *fakeSupervisorStore) CreateSession(ctx context.Context, sess *model.SupervisorSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sess.ID = s.nextID
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *fakeSupervisorStore) GetSession(ctx context.Context, token string) (*model.SupervisorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *fakeSupervisorStore) RevokeSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	sess.Revoked = true
	return nil
}

// memCounterStore is the in-process stand-in for the Redis INCR counter.
type memCounterStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{counters: make(map[string]int64)}
}

func (s *memCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

// recordingSink captures audit entries for assertions.
type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) Record(ctx context.Context, e audit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}
