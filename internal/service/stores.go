package service

import (
	"context"
	"errors"
	"time"

	"FlockCheck/internal/model"
)

// Storage errors surfaced by store implementations. Services translate them
// into business error definitions; handlers never see them directly.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Identity is the explicit caller identity passed into every operation.
// The core takes no identity from ambient request context.
type Identity struct {
	PersonID  int64
	Role      string
	StationID string
}

// LocationStore reads and writes the flat location table. Graph traversal
// happens in the services, by id, with explicit visited sets.
type LocationStore interface {
	Get(ctx context.Context, id int64) (*model.Location, error)
	Create(ctx context.Context, loc *model.Location) error
	Update(ctx context.Context, loc *model.Location) error
	List(ctx context.Context) ([]*model.Location, error)
}

// AttendanceStore persists attendance records. Create must enforce the
// (person, schedule, date) uniqueness atomically and return ErrDuplicate
// when the constraint trips.
type AttendanceStore interface {
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	Get(ctx context.Context, id int64) (*model.AttendanceRecord, error)
	Update(ctx context.Context, rec *model.AttendanceRecord) error
	FindCheckedIn(ctx context.Context, personID, scheduleID int64, date time.Time) (*model.AttendanceRecord, error)
	CountCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) (int, error)
	CodeExists(ctx context.Context, locationID int64, date time.Time, code string) (bool, error)
	ListCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) ([]*model.AttendanceRecord, error)
}

// PagerStore persists pager assignments. CreateAssignment must return
// ErrDuplicate when the active (campus, date, number) constraint trips.
type PagerStore interface {
	CreateAssignment(ctx context.Context, a *model.PagerAssignment) error
	GetActiveByAttendance(ctx context.Context, attendanceID int64) (*model.PagerAssignment, error)
	DeactivateByAttendance(ctx context.Context, attendanceID int64) error
	DeactivateForDate(ctx context.Context, date time.Time) (int64, error)
}

// SupervisorStore persists supervisors and their sessions.
type SupervisorStore interface {
	GetByPINHash(ctx context.Context, pinHash string) (*model.Supervisor, error)
	GetSupervisor(ctx context.Context, id int64) (*model.Supervisor, error)
	CreateSession(ctx context.Context, s *model.SupervisorSession) error
	GetSession(ctx context.Context, token string) (*model.SupervisorSession, error)
	RevokeSession(ctx context.Context, token string) error
}

// CounterStore is an atomic per-key increment-and-fetch. The first call for
// a key returns 1. Backed by redis INCR in production.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
}
