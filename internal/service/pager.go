package service

import (
	"context"
	"fmt"
	"time"

	"FlockCheck/internal/model"
	pkgerrors "FlockCheck/pkg/errors"
)

// pagerAssignRetries bounds the insert-retry loop when two callers race the
// active (campus, date, number) constraint.
const pagerAssignRetries = 3

// PagerSequencer hands out sequential pager numbers per (campus, date)
// scope. The counter itself is the single point of serialization per scope
// (atomic increment-and-fetch); there is no global lock across scopes.
type PagerSequencer struct {
	counters CounterStore
	pagers   PagerStore
	base     int
}

func NewPagerSequencer(counters CounterStore, pagers PagerStore, base int) *PagerSequencer {
	if base <= 0 {
		base = 100
	}
	return &PagerSequencer{
		counters: counters,
		pagers:   pagers,
		base:     base,
	}
}

// Next returns the next pager number for the scope. Two simultaneous callers
// on one scope never receive the same number.
func (s *PagerSequencer) Next(ctx context.Context, campusID *int64, date time.Time) (int, error) {
	n, err := s.counters.Incr(ctx, pagerScopeKey(campusID, date))
	if err != nil {
		return 0, fmt.Errorf("failed to advance pager counter: %w", err)
	}

	return s.base + int(n) - 1, nil
}

// Assign issues the next number and records the assignment. The unique
// constraint on active (campus, date, number) backstops the counter: a
// conflicting insert is retried with a fresh number.
func (s *PagerSequencer) Assign(
	ctx context.Context,
	campusID *int64,
	date time.Time,
	attendanceID int64,
	guardianPhone string,
) (*model.PagerAssignment, error) {
	for attempt := 0; attempt < pagerAssignRetries; attempt++ {
		number, err := s.Next(ctx, campusID, date)
		if err != nil {
			return nil, err
		}

		assignment := &model.PagerAssignment{
			PagerNumber:    number,
			CampusID:       campusID,
			AssignmentDate: date,
			AttendanceID:   attendanceID,
			GuardianPhone:  guardianPhone,
			IsActive:       true,
		}

		err = s.pagers.CreateAssignment(ctx, assignment)
		if err == nil {
			return assignment, nil
		}
		if err != ErrDuplicate {
			return nil, fmt.Errorf("failed to record pager assignment: %w", err)
		}
	}

	return nil, pkgerrors.PagerUnavailable
}

// Release deactivates the active assignment for an attendance record, if
// any. Safe to call when no pager was issued.
func (s *PagerSequencer) Release(ctx context.Context, attendanceID int64) error {
	if err := s.pagers.DeactivateByAttendance(ctx, attendanceID); err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to release pager for attendance %d: %w", attendanceID, err)
	}
	return nil
}

func pagerScopeKey(campusID *int64, date time.Time) string {
	scope := "global"
	if campusID != nil {
		scope = fmt.Sprintf("campus:%d", *campusID)
	}
	return fmt.Sprintf("pager:seq:%s:%s", scope, date.Format("2006-01-02"))
}
