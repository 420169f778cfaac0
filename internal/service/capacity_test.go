package service

import (
	"context"
	"testing"
	"time"

	"FlockCheck/internal/model"
	pkgerrors "FlockCheck/pkg/errors"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func testDate() time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
}

func fillLocation(t *testing.T, locs *fakeLocationStore, att *fakeAttendanceStore, locationID, scheduleID int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		att.seed(&model.AttendanceRecord{
			PersonID:       int64(10_000 + i),
			LocationID:     locationID,
			ScheduleID:     scheduleID,
			AttendanceDate: testDate(),
			State:          model.AttendanceCheckedIn,
			SecurityCode:   "000000",
		})
	}
	_ = locs
}

func TestResolveAdmitsUnderFirmThreshold(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(10), IsActive: true})
	fillLocation(t, locs, att, loc.ID, 1, 9)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionAdmitted {
		t.Fatalf("kind = %s, want admitted", d.Kind)
	}
	if d.LocationID != loc.ID {
		t.Fatalf("location = %d, want %d", d.LocationID, loc.ID)
	}
}

func TestResolveNearCapacityAtSoftThreshold(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Nursery", SoftThreshold: intPtr(8), FirmThreshold: intPtr(10), IsActive: true})
	fillLocation(t, locs, att, loc.ID, 1, 8)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionAdmitted || !d.NearCapacity {
		t.Fatalf("got kind=%s near=%v, want admitted near-capacity", d.Kind, d.NearCapacity)
	}
}

func TestResolveDeniesAtFirmThresholdWithoutOverflow(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(5), IsActive: true})
	fillLocation(t, locs, att, loc.ID, 1, 5)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionDenied {
		t.Fatalf("kind = %s, want denied", d.Kind)
	}
	if d.Reason.Code != pkgerrors.CapacityExceeded.Code {
		t.Fatalf("reason = %s, want %s", d.Reason.Code, pkgerrors.CapacityExceeded.Code)
	}
}

func TestResolveOverrideAdmitsPastFirmThreshold(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Nursery", FirmThreshold: intPtr(5), IsActive: true})
	fillLocation(t, locs, att, loc.ID, 1, 5)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionAdmitted || !d.Overridden {
		t.Fatalf("got kind=%s overridden=%v, want overridden admission", d.Kind, d.Overridden)
	}
}

func TestResolveRedirectsToOverflow(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	overflow := locs.add(&model.Location{Name: "Overflow Room", FirmThreshold: intPtr(10), IsActive: true})
	primary := locs.add(&model.Location{
		Name:               "Nursery",
		FirmThreshold:      intPtr(5),
		OverflowLocationID: int64Ptr(overflow.ID),
		AutoAssignOverflow: true,
		IsActive:           true,
	})
	fillLocation(t, locs, att, primary.ID, 1, 5)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), primary.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionRedirected {
		t.Fatalf("kind = %s, want redirected", d.Kind)
	}
	if d.LocationID != overflow.ID {
		t.Fatalf("redirect target = %d, want %d", d.LocationID, overflow.ID)
	}
}

func TestResolveSkipsInactiveOverflowHop(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	second := locs.add(&model.Location{Name: "Gym", FirmThreshold: intPtr(20), IsActive: true})
	first := locs.add(&model.Location{
		Name:               "Closed Room",
		FirmThreshold:      intPtr(20),
		OverflowLocationID: int64Ptr(second.ID),
		IsActive:           false,
	})
	primary := locs.add(&model.Location{
		Name:               "Nursery",
		FirmThreshold:      intPtr(1),
		OverflowLocationID: int64Ptr(first.ID),
		AutoAssignOverflow: true,
		IsActive:           true,
	})
	fillLocation(t, locs, att, primary.ID, 1, 1)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), primary.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionRedirected || d.LocationID != second.ID {
		t.Fatalf("got kind=%s location=%d, want redirect to %d", d.Kind, d.LocationID, second.ID)
	}
}

func TestResolveTerminatesOnOverflowCycle(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()

	// a -> b -> a, both full.
	a := locs.add(&model.Location{Name: "A", FirmThreshold: intPtr(1), AutoAssignOverflow: true, IsActive: true})
	b := locs.add(&model.Location{Name: "B", FirmThreshold: intPtr(1), AutoAssignOverflow: true, IsActive: true})
	a.OverflowLocationID = int64Ptr(b.ID)
	b.OverflowLocationID = int64Ptr(a.ID)
	if err := locs.Update(context.Background(), a); err != nil {
		t.Fatalf("update a: %v", err)
	}
	if err := locs.Update(context.Background(), b); err != nil {
		t.Fatalf("update b: %v", err)
	}
	fillLocation(t, locs, att, a.ID, 1, 1)
	att.seed(&model.AttendanceRecord{
		PersonID:       20_000,
		LocationID:     b.ID,
		ScheduleID:     1,
		AttendanceDate: testDate(),
		State:          model.AttendanceCheckedIn,
		SecurityCode:   "000001",
	})

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), a.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionDenied {
		t.Fatalf("kind = %s, want denied", d.Kind)
	}
	if d.Reason.Code != pkgerrors.OverflowCycle.Code {
		t.Fatalf("reason = %s, want %s", d.Reason.Code, pkgerrors.OverflowCycle.Code)
	}
}

func TestResolveDeniesInactiveLocation(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Nursery", IsActive: false})

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionDenied || d.Reason.Code != pkgerrors.LocationInactive.Code {
		t.Fatalf("got kind=%s reason=%s, want inactive denial", d.Kind, d.Reason.Code)
	}
}

func TestResolveUnlimitedWhenFirmThresholdUnset(t *testing.T) {
	locs := newFakeLocationStore()
	att := newFakeAttendanceStore()
	loc := locs.add(&model.Location{Name: "Sanctuary", IsActive: true})
	fillLocation(t, locs, att, loc.ID, 1, 500)

	r := NewCapacityResolver(locs, att)
	d, err := r.Resolve(context.Background(), loc.ID, 1, testDate(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Kind != DecisionAdmitted {
		t.Fatalf("kind = %s, want admitted", d.Kind)
	}
}
