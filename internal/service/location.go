package service

import (
	"context"
	"fmt"

	"FlockCheck/internal/model"
	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
)

const maxHierarchyDepth = 64

// LocationService manages the location tree and its capacity settings.
// Writes validate threshold ordering and reject cycles through either the
// parent chain or the overflow chain.
type LocationService struct {
	locations LocationStore
}

func NewLocationService(locations LocationStore) *LocationService {
	return &LocationService{locations: locations}
}

func (s *LocationService) Get(ctx context.Context, id int64) (*model.Location, error) {
	loc, err := s.locations.Get(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to load location %d: %w", id, err)
	}
	return loc, nil
}

func (s *LocationService) List(ctx context.Context) ([]*model.Location, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

// Create validates and inserts a new location.
func (s *LocationService) Create(ctx context.Context, req dto.UpsertLocationRequest) (*model.Location, error) {
	loc := locationFromRequest(req)

	if err := s.validate(ctx, loc, 0); err != nil {
		return nil, err
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return loc, nil
}

// Update validates and applies changes to an existing location. The cycle
// checks run against the updated values, so an edit cannot introduce a loop
// that the stored graph lacks.
func (s *LocationService) Update(ctx context.Context, id int64, req dto.UpsertLocationRequest) (*model.Location, error) {
	existing, err := s.locations.Get(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to load location %d: %w", id, err)
	}

	loc := locationFromRequest(req)
	loc.BaseModel = existing.BaseModel

	if err := s.validate(ctx, loc, id); err != nil {
		return nil, err
	}

	if err := s.locations.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to update location %d: %w", id, err)
	}
	return loc, nil
}

func (s *LocationService) validate(ctx context.Context, loc *model.Location, selfID int64) error {
	if loc.Name == "" {
		return pkgerrors.ValidationError
	}
	if loc.SoftThreshold != nil && *loc.SoftThreshold < 0 {
		return pkgerrors.ValidationError
	}
	if loc.FirmThreshold != nil && *loc.FirmThreshold < 0 {
		return pkgerrors.ValidationError
	}
	if loc.SoftThreshold != nil && loc.FirmThreshold != nil && *loc.SoftThreshold > *loc.FirmThreshold {
		return pkgerrors.ThresholdOrderInvalid
	}
	if loc.StaffChildRatio != nil && *loc.StaffChildRatio <= 0 {
		return pkgerrors.ValidationError
	}

	if err := s.checkChain(ctx, selfID, loc.ParentID, func(l *model.Location) *int64 { return l.ParentID }); err != nil {
		return err
	}
	return s.checkChain(ctx, selfID, loc.OverflowLocationID, func(l *model.Location) *int64 { return l.OverflowLocationID })
}

// checkChain walks one pointer chain (parent or overflow) from start,
// rejecting a hop back to selfID or any repeated node.
func (s *LocationService) checkChain(
	ctx context.Context,
	selfID int64,
	start *int64,
	next func(*model.Location) *int64,
) error {
	visited := map[int64]struct{}{}
	if selfID != 0 {
		visited[selfID] = struct{}{}
	}

	cursor := start
	for depth := 0; cursor != nil; depth++ {
		if depth >= maxHierarchyDepth {
			return pkgerrors.LocationCycle
		}
		if _, seen := visited[*cursor]; seen {
			return pkgerrors.LocationCycle
		}
		visited[*cursor] = struct{}{}

		loc, err := s.locations.Get(ctx, *cursor)
		if err != nil {
			if err == ErrNotFound {
				return pkgerrors.ValidationError
			}
			return fmt.Errorf("failed to load location %d: %w", *cursor, err)
		}
		cursor = next(loc)
	}
	return nil
}

func locationFromRequest(req dto.UpsertLocationRequest) *model.Location {
	return &model.Location{
		Name:               req.Name,
		ParentID:           req.ParentID,
		CampusID:           req.CampusID,
		SoftThreshold:      req.SoftThreshold,
		FirmThreshold:      req.FirmThreshold,
		StaffChildRatio:    req.StaffChildRatio,
		OverflowLocationID: req.OverflowLocationID,
		AutoAssignOverflow: req.AutoAssignOverflow,
		RequiresPager:      req.RequiresPager,
		IsActive:           req.IsActive,
	}
}
