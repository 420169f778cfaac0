package service

import (
	"context"
	"fmt"
	"time"

	pkgerrors "FlockCheck/pkg/errors"
)

// DecisionKind classifies a capacity decision.
type DecisionKind string

const (
	DecisionAdmitted   DecisionKind = "admitted"
	DecisionRedirected DecisionKind = "redirected"
	DecisionDenied     DecisionKind = "denied"
)

// Decision is the Capacity Resolver's answer for one admission request.
// LocationID is the location to admit at (the requested one for Admitted,
// an overflow hop for Redirected). Reason is set only for Denied.
type Decision struct {
	Kind         DecisionKind
	LocationID   int64
	NearCapacity bool
	Overridden   bool
	Reason       pkgerrors.Definition
}

// maxOverflowHops bounds the overflow walk independently of the visited
// set, so a corrupted chain can never stall a kiosk request.
const maxOverflowHops = 32

// CapacityResolver decides whether a location can take one more person.
// It only reads current occupancy; callers must treat the decision as
// provisional until the attendance write commits. Concurrent admissions on
// the same location can transiently overshoot the firm threshold by the
// number of in-flight requests (accepted soft bound, no per-location lock).
type CapacityResolver struct {
	locations  LocationStore
	attendance AttendanceStore
}

func NewCapacityResolver(locations LocationStore, attendance AttendanceStore) *CapacityResolver {
	return &CapacityResolver{
		locations:  locations,
		attendance: attendance,
	}
}

// Resolve computes the admission decision for (locationID, scheduleID, date).
// override admits past the firm threshold; the caller is responsible for
// having validated the supervisor session before setting it.
func (r *CapacityResolver) Resolve(
	ctx context.Context,
	locationID, scheduleID int64,
	date time.Time,
	override bool,
) (Decision, error) {
	loc, err := r.locations.Get(ctx, locationID)
	if err != nil {
		if err == ErrNotFound {
			return denied(pkgerrors.NotFound), nil
		}
		return Decision{}, fmt.Errorf("failed to load location %d: %w", locationID, err)
	}

	if !loc.IsActive {
		return denied(pkgerrors.LocationInactive), nil
	}

	occupancy, err := r.attendance.CountCheckedIn(ctx, loc.ID, scheduleID, date)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count occupancy for location %d: %w", loc.ID, err)
	}

	if loc.FirmThreshold == nil || occupancy < *loc.FirmThreshold {
		return Decision{
			Kind:         DecisionAdmitted,
			LocationID:   loc.ID,
			NearCapacity: nearCapacity(loc.SoftThreshold, occupancy),
		}, nil
	}

	// At or past firm capacity.
	if override {
		return Decision{
			Kind:         DecisionAdmitted,
			LocationID:   loc.ID,
			NearCapacity: true,
			Overridden:   true,
		}, nil
	}

	if !loc.AutoAssignOverflow || loc.OverflowLocationID == nil {
		return denied(pkgerrors.CapacityExceeded), nil
	}

	return r.walkOverflow(ctx, loc.ID, *loc.OverflowLocationID, scheduleID, date)
}

// walkOverflow follows the overflow chain until a hop has spare firm
// capacity. Visited ids abort the walk as a cycle; a chain end with no
// capacity anywhere denies the request.
func (r *CapacityResolver) walkOverflow(
	ctx context.Context,
	originID, firstHop int64,
	scheduleID int64,
	date time.Time,
) (Decision, error) {
	visited := map[int64]bool{originID: true}
	next := firstHop

	for hops := 0; hops < maxOverflowHops; hops++ {
		if visited[next] {
			return denied(pkgerrors.OverflowCycle), nil
		}
		visited[next] = true

		loc, err := r.locations.Get(ctx, next)
		if err != nil {
			if err == ErrNotFound {
				return denied(pkgerrors.CapacityExceeded), nil
			}
			return Decision{}, fmt.Errorf("failed to load overflow location %d: %w", next, err)
		}

		if loc.IsActive {
			occupancy, err := r.attendance.CountCheckedIn(ctx, loc.ID, scheduleID, date)
			if err != nil {
				return Decision{}, fmt.Errorf("failed to count occupancy for location %d: %w", loc.ID, err)
			}

			if loc.FirmThreshold == nil || occupancy < *loc.FirmThreshold {
				return Decision{
					Kind:         DecisionRedirected,
					LocationID:   loc.ID,
					NearCapacity: nearCapacity(loc.SoftThreshold, occupancy),
				}, nil
			}
		}

		if loc.OverflowLocationID == nil {
			break
		}
		next = *loc.OverflowLocationID
	}

	return denied(pkgerrors.CapacityExceeded), nil
}

func nearCapacity(soft *int, occupancy int) bool {
	return soft != nil && occupancy >= *soft
}

func denied(reason pkgerrors.Definition) Decision {
	return Decision{Kind: DecisionDenied, Reason: reason}
}
