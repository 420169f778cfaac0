package service

import (
	"context"
	"testing"

	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
)

func TestCreateLocationValidatesThresholdOrder(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	_, err := svc.Create(context.Background(), dto.UpsertLocationRequest{
		Name:          "Nursery",
		SoftThreshold: intPtr(12),
		FirmThreshold: intPtr(10),
		IsActive:      true,
	})
	if err != pkgerrors.ThresholdOrderInvalid {
		t.Fatalf("err = %v, want ThresholdOrderInvalid", err)
	}

	loc, err := svc.Create(context.Background(), dto.UpsertLocationRequest{
		Name:          "Nursery",
		SoftThreshold: intPtr(8),
		FirmThreshold: intPtr(10),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if loc.ID == 0 {
		t.Fatal("location id not assigned")
	}
}

func TestCreateLocationRejectsBadValues(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	cases := []dto.UpsertLocationRequest{
		{Name: ""},
		{Name: "Nursery", SoftThreshold: intPtr(-1)},
		{Name: "Nursery", FirmThreshold: intPtr(-1)},
		{Name: "Nursery", StaffChildRatio: intPtr(0)},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); err != pkgerrors.ValidationError {
			t.Fatalf("case %d: err = %v, want ValidationError", i, err)
		}
	}
}

func TestUpdateLocationRejectsOverflowCycle(t *testing.T) {
	store := newFakeLocationStore()
	svc := NewLocationService(store)

	a, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "A", IsActive: true})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "B", OverflowLocationID: &a.ID, IsActive: true})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	// a -> b would close the loop a -> b -> a.
	_, err = svc.Update(context.Background(), a.ID, dto.UpsertLocationRequest{
		Name:               "A",
		OverflowLocationID: &b.ID,
		IsActive:           true,
	})
	if err != pkgerrors.LocationCycle {
		t.Fatalf("err = %v, want LocationCycle", err)
	}
}

func TestUpdateLocationRejectsSelfOverflow(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	a, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "A", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), a.ID, dto.UpsertLocationRequest{
		Name:               "A",
		OverflowLocationID: &a.ID,
		IsActive:           true,
	})
	if err != pkgerrors.LocationCycle {
		t.Fatalf("err = %v, want LocationCycle", err)
	}
}

func TestUpdateLocationRejectsParentCycle(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	root, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "Building", IsActive: true})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "Room", ParentID: &root.ID, IsActive: true})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	_, err = svc.Update(context.Background(), root.ID, dto.UpsertLocationRequest{
		Name:     "Building",
		ParentID: &child.ID,
		IsActive: true,
	})
	if err != pkgerrors.LocationCycle {
		t.Fatalf("err = %v, want LocationCycle", err)
	}
}

func TestCreateLocationRejectsUnknownReference(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	missing := int64(999)
	_, err := svc.Create(context.Background(), dto.UpsertLocationRequest{
		Name:               "Nursery",
		OverflowLocationID: &missing,
		IsActive:           true,
	})
	if err != pkgerrors.ValidationError {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateUnknownLocation(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	_, err := svc.Update(context.Background(), 42, dto.UpsertLocationRequest{Name: "Ghost", IsActive: true})
	if err != pkgerrors.NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestGetAndListLocations(t *testing.T) {
	svc := NewLocationService(newFakeLocationStore())

	created, err := svc.Create(context.Background(), dto.UpsertLocationRequest{Name: "Nursery", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Nursery" {
		t.Fatalf("name = %q", got.Name)
	}

	if _, err := svc.Get(context.Background(), 999); err != pkgerrors.NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}

	all, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("list has %d entries, want 1", len(all))
	}
}
