package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"FlockCheck/internal/model"
	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
)

type checkinFixture struct {
	locs     *fakeLocationStore
	att      *fakeAttendanceStore
	pagers   *fakePagerStore
	sups     *fakeSupervisorStore
	counters *memCounterStore
	sink     *recordingSink
	sessions *SupervisorService
	svc      *CheckInService
}

func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()

	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	pagers := newFakePagerStore()
	sups := newFakeSupervisorStore()
	counters := newMemCounterStore()
	sink := &recordingSink{}

	sessions := NewSupervisorService(sups, sink, time.Hour, testHashPIN)

	var idSeq int64
	newID := func() (int64, error) {
		return atomic.AddInt64(&idSeq, 1), nil
	}

	svc := NewCheckInService(
		locs,
		att,
		NewCapacityResolver(locs, att),
		NewSecurityCodeAllocator(att, 6, 100),
		NewPagerSequencer(counters, pagers, 100),
		sessions,
		sink,
		newID,
	)

	return &checkinFixture{
		locs:     locs,
		att:      att,
		pagers:   pagers,
		sups:     sups,
		counters: counters,
		sink:     sink,
		sessions: sessions,
		svc:      svc,
	}
}

func kioskIdentity() Identity {
	return Identity{Role: "kiosk", StationID: "lobby-1"}
}

func TestProcessBatchAdmitsAndIssuesCode(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(10), IsActive: true})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{
			{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
			{PersonID: 2, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
		},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.BatchID == "" {
		t.Fatal("batch id missing")
	}
	if resp.SuccessCount != 2 || resp.FailureCount != 0 {
		t.Fatalf("got %d/%d, want 2 successes", resp.SuccessCount, resp.FailureCount)
	}
	for _, r := range resp.Results {
		if len(r.SecurityCode) != 6 {
			t.Fatalf("security code %q, want 6 digits", r.SecurityCode)
		}
	}
	if resp.Results[0].SecurityCode == resp.Results[1].SecurityCode {
		t.Fatal("sibling records share a security code")
	}
}

func TestProcessBatchRejectsDuplicateWithinDay(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", IsActive: true})

	item := dto.CheckInItem{PersonID: 7, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"}

	first, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{item},
	})
	if err != nil || first.SuccessCount != 1 {
		t.Fatalf("first check-in failed: %v %+v", err, first)
	}

	second, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{item},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if second.FailureCount != 1 {
		t.Fatalf("duplicate was admitted: %+v", second.Results)
	}
	if second.Results[0].ErrorReason != pkgerrors.DuplicateCheckIn.Code {
		t.Fatalf("reason = %s, want %s", second.Results[0].ErrorReason, pkgerrors.DuplicateCheckIn.Code)
	}
}

func TestProcessBatchConcurrentDuplicateExactlyOneWins(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", IsActive: true})

	item := dto.CheckInItem{PersonID: 42, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"}

	const workers = 16
	var wg sync.WaitGroup
	var successes int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
				Requests: []dto.CheckInItem{item},
			})
			if err != nil {
				t.Errorf("ProcessBatch: %v", err)
				return
			}
			atomic.AddInt64(&successes, int64(resp.SuccessCount))
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("%d check-ins succeeded for the same person, want exactly 1", successes)
	}
}

func TestProcessBatchRedirectsWhenPrimaryFull(t *testing.T) {
	f := newCheckinFixture(t)
	overflow := f.locs.add(&model.Location{Name: "Overflow", FirmThreshold: intPtr(10), IsActive: true})
	primary := f.locs.add(&model.Location{
		Name:               "Nursery",
		FirmThreshold:      intPtr(1),
		OverflowLocationID: int64Ptr(overflow.ID),
		AutoAssignOverflow: true,
		IsActive:           true,
	})
	f.att.seed(&model.AttendanceRecord{
		PersonID:       99,
		LocationID:     primary.ID,
		ScheduleID:     1,
		AttendanceDate: testDate(),
		State:          model.AttendanceCheckedIn,
		SecurityCode:   "999999",
	})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{{PersonID: 1, LocationID: primary.ID, ScheduleID: 1, Date: "2026-03-01"}},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	res := resp.Results[0]
	if !res.Success {
		t.Fatalf("redirect item failed: %s", res.ErrorReason)
	}
	if res.RedirectedLocationID == nil || *res.RedirectedLocationID != overflow.ID {
		t.Fatalf("redirected location = %v, want %d", res.RedirectedLocationID, overflow.ID)
	}

	rec, err := f.att.Get(context.Background(), res.AttendanceID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.LocationID != overflow.ID {
		t.Fatalf("record stored at %d, want overflow %d", rec.LocationID, overflow.ID)
	}
}

func TestProcessBatchOverrideRequiresValidSession(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(0), IsActive: true})

	item := dto.CheckInItem{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01", Override: true}

	// No token at all.
	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{item},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.Results[0].ErrorReason != pkgerrors.SupervisorOverrideRequired.Code {
		t.Fatalf("reason = %s, want %s", resp.Results[0].ErrorReason, pkgerrors.SupervisorOverrideRequired.Code)
	}

	// Valid session admits past the firm threshold and audits the override.
	f.sups.addSupervisor(&model.Supervisor{PersonID: 500, Name: "Dana", PINHash: testHashPIN("1234"), IsActive: true})
	login, err := f.sessions.Login(context.Background(), "1234", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	resp, err = f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests:        []dto.CheckInItem{item},
		SupervisorToken: login.Token,
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.SuccessCount != 1 {
		t.Fatalf("override item failed: %+v", resp.Results)
	}

	rec, err := f.att.Get(context.Background(), resp.Results[0].AttendanceID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if !rec.WasOverride {
		t.Fatal("record not flagged as override admission")
	}

	found := false
	for _, action := range f.sink.actions() {
		if action == "checkin.capacity_override" {
			found = true
		}
	}
	if !found {
		t.Fatal("override admission was not audited")
	}
}

func TestProcessBatchAssignsPagerWhenRequired(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", RequiresPager: true, IsActive: true})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{
			{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
			{PersonID: 2, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
		},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.SuccessCount != 2 {
		t.Fatalf("got %d successes, want 2", resp.SuccessCount)
	}
	first, second := resp.Results[0], resp.Results[1]
	if first.PagerNumber == nil || second.PagerNumber == nil {
		t.Fatal("pager numbers missing")
	}
	if *first.PagerNumber == *second.PagerNumber {
		t.Fatalf("both records got pager %d", *first.PagerNumber)
	}
	if *first.PagerNumber < 100 {
		t.Fatalf("pager number %d below base", *first.PagerNumber)
	}
}

func TestProcessBatchCancelledContextMarksRemaining(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", IsActive: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := f.svc.ProcessBatch(ctx, kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{
			{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
			{PersonID: 2, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
		},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.FailureCount != 2 {
		t.Fatalf("got %d failures, want 2", resp.FailureCount)
	}
	for _, r := range resp.Results {
		if r.ErrorReason != pkgerrors.Cancelled.Code {
			t.Fatalf("reason = %s, want %s", r.ErrorReason, pkgerrors.Cancelled.Code)
		}
	}
}

func TestProcessBatchRejectsMalformedItem(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", IsActive: true})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{
			{PersonID: 0, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
			{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "not-a-date"},
			{PersonID: 2, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
		},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if resp.SuccessCount != 1 || resp.FailureCount != 2 {
		t.Fatalf("got %d/%d, want 1 success and 2 validation failures", resp.SuccessCount, resp.FailureCount)
	}
	for _, r := range resp.Results[:2] {
		if r.ErrorReason != pkgerrors.ValidationError.Code {
			t.Fatalf("reason = %s, want %s", r.ErrorReason, pkgerrors.ValidationError.Code)
		}
	}
}

func TestProcessBatchEmptyIsValidationError(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{})
	if err != pkgerrors.ValidationError {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCheckOutIsIdempotent(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", RequiresPager: true, IsActive: true})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"}},
	})
	if err != nil || resp.SuccessCount != 1 {
		t.Fatalf("check-in failed: %v %+v", err, resp)
	}
	attendanceID := resp.Results[0].AttendanceID

	first, err := f.svc.CheckOut(context.Background(), attendanceID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	if _, err := f.pagers.GetActiveByAttendance(context.Background(), attendanceID); err != ErrNotFound {
		t.Fatalf("pager still active after checkout: %v", err)
	}

	second, err := f.svc.CheckOut(context.Background(), attendanceID)
	if err != nil {
		t.Fatalf("repeat CheckOut: %v", err)
	}
	if !second.CheckedOutAt.Equal(first.CheckedOutAt) {
		t.Fatalf("repeat checkout moved timestamp: %v vs %v", second.CheckedOutAt, first.CheckedOutAt)
	}
}

func TestRecheckInAfterSameDayCheckOut(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(10), IsActive: true})

	item := dto.CheckInItem{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"}
	first, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{item},
	})
	if err != nil || first.SuccessCount != 1 {
		t.Fatalf("check-in failed: %v %+v", err, first)
	}

	if _, err := f.svc.CheckOut(context.Background(), first.Results[0].AttendanceID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	// Only checked-in rows hold the idempotency key, so the same person
	// can return later the same day for the same schedule.
	second, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{item},
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	res := second.Results[0]
	if !res.Success {
		t.Fatalf("re-check-in failed: %s", res.ErrorReason)
	}
	if res.AttendanceID == first.Results[0].AttendanceID {
		t.Fatal("re-check-in reused the checked-out record")
	}
}

func TestCheckOutUnknownRecord(t *testing.T) {
	f := newCheckinFixture(t)
	if _, err := f.svc.CheckOut(context.Background(), 12345); err != pkgerrors.NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestRosterListsOnlyCheckedIn(t *testing.T) {
	f := newCheckinFixture(t)
	loc := f.locs.add(&model.Location{Name: "Nursery", IsActive: true})

	resp, err := f.svc.ProcessBatch(context.Background(), kioskIdentity(), dto.BatchCheckInRequest{
		Requests: []dto.CheckInItem{
			{PersonID: 1, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
			{PersonID: 2, LocationID: loc.ID, ScheduleID: 1, Date: "2026-03-01"},
		},
	})
	if err != nil || resp.SuccessCount != 2 {
		t.Fatalf("check-in failed: %v", err)
	}

	if _, err := f.svc.CheckOut(context.Background(), resp.Results[0].AttendanceID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	entries, err := f.svc.Roster(context.Background(), loc.ID, 1, testDate())
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("roster has %d entries, want 1", len(entries))
	}
	if entries[0].PersonID != 2 {
		t.Fatalf("roster person = %d, want 2", entries[0].PersonID)
	}
}
