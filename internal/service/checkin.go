package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlockCheck/internal/audit"
	"FlockCheck/internal/model"
	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
	"FlockCheck/pkg/logger"
	"FlockCheck/pkg/metrics"
)

// CheckInService processes kiosk check-in batches. Items are handled one by
// one; a failed item never rolls back its siblings. Callers needing
// all-or-nothing must batch accordingly above this layer.
type CheckInService struct {
	locations  LocationStore
	attendance AttendanceStore
	resolver   *CapacityResolver
	codes      *SecurityCodeAllocator
	pagers     *PagerSequencer
	sessions   SessionValidator
	auditSink  audit.Sink
	clock      func() time.Time
	newID      func() (int64, error)
}

func NewCheckInService(
	locations LocationStore,
	attendance AttendanceStore,
	resolver *CapacityResolver,
	codes *SecurityCodeAllocator,
	pagers *PagerSequencer,
	sessions SessionValidator,
	auditSink audit.Sink,
	newID func() (int64, error),
) *CheckInService {
	return &CheckInService{
		locations:  locations,
		attendance: attendance,
		resolver:   resolver,
		codes:      codes,
		pagers:     pagers,
		sessions:   sessions,
		auditSink:  auditSink,
		clock:      time.Now,
		newID:      newID,
	}
}

// ProcessBatch runs one kiosk submission. On cancellation mid-batch,
// committed items stay committed and the rest report Cancelled.
func (s *CheckInService) ProcessBatch(
	ctx context.Context,
	caller Identity,
	req dto.BatchCheckInRequest,
) (*dto.BatchCheckInResponse, error) {
	if len(req.Requests) == 0 {
		return nil, pkgerrors.ValidationError
	}

	resp := &dto.BatchCheckInResponse{
		BatchID: uuid.NewString(),
		Results: make([]dto.CheckInItemResult, 0, len(req.Requests)),
	}

	// Override items share one supervisor session, validated once per
	// batch. The acting supervisor is audited per admitted override.
	var overrideSupervisor *model.Supervisor
	var overrideErr error
	overrideChecked := false

	for _, item := range req.Requests {
		var result dto.CheckInItemResult

		if err := ctx.Err(); err != nil {
			result = failureResult(item.PersonID, pkgerrors.Cancelled)
		} else {
			if item.Override && !overrideChecked {
				overrideChecked = true
				overrideSupervisor, overrideErr = s.validateOverride(ctx, req.SupervisorToken)
			}
			result = s.processItem(ctx, item, overrideSupervisor, overrideErr)
		}

		if result.Success {
			resp.SuccessCount++
		} else {
			resp.FailureCount++
		}
		resp.Results = append(resp.Results, result)
	}

	logger.Logger.Info("Check-in batch processed",
		zap.String("batch_id", resp.BatchID),
		zap.String("station_id", caller.StationID),
		zap.Int("success_count", resp.SuccessCount),
		zap.Int("failure_count", resp.FailureCount),
	)

	return resp, nil
}

func (s *CheckInService) validateOverride(ctx context.Context, token string) (*model.Supervisor, error) {
	if token == "" {
		return nil, pkgerrors.SupervisorOverrideRequired
	}
	return s.sessions.Validate(ctx, token)
}

func (s *CheckInService) processItem(
	ctx context.Context,
	item dto.CheckInItem,
	overrideSupervisor *model.Supervisor,
	overrideErr error,
) dto.CheckInItemResult {
	date, err := parseItemDate(item)
	if err != nil {
		return failureResult(item.PersonID, pkgerrors.ValidationError)
	}

	if item.Override && overrideErr != nil {
		if def, ok := overrideErr.(pkgerrors.Definition); ok {
			return failureResult(item.PersonID, def)
		}
		return failureResult(item.PersonID, pkgerrors.Unauthorized)
	}

	// Fast duplicate check; the unique constraint at write time is the
	// authoritative one.
	existing, err := s.attendance.FindCheckedIn(ctx, item.PersonID, item.ScheduleID, date)
	if err != nil && err != ErrNotFound {
		return s.itemFault(item.PersonID, "duplicate pre-check", err)
	}
	if existing != nil {
		return failureResult(item.PersonID, pkgerrors.DuplicateCheckIn)
	}

	decision, err := s.resolver.Resolve(ctx, item.LocationID, item.ScheduleID, date, item.Override)
	if err != nil {
		return s.itemFault(item.PersonID, "capacity resolve", err)
	}
	if decision.Kind == DecisionDenied {
		metrics.RecordCapacityDenial(ctx, decision.Reason.Code)
		return failureResult(item.PersonID, decision.Reason)
	}

	admitLoc, err := s.locations.Get(ctx, decision.LocationID)
	if err != nil {
		return s.itemFault(item.PersonID, "load admit location", err)
	}

	code, err := s.codes.Allocate(ctx, decision.LocationID, date)
	if err != nil {
		if def, ok := err.(pkgerrors.Definition); ok {
			return failureResult(item.PersonID, def)
		}
		if ctx.Err() != nil {
			return failureResult(item.PersonID, pkgerrors.Cancelled)
		}
		return s.itemFault(item.PersonID, "allocate security code", err)
	}

	publicID, err := s.newID()
	if err != nil {
		return s.itemFault(item.PersonID, "generate attendance id", err)
	}

	rec := &model.AttendanceRecord{
		PublicID:       publicID,
		PersonID:       item.PersonID,
		LocationID:     decision.LocationID,
		ScheduleID:     item.ScheduleID,
		AttendanceDate: date,
		CheckInAt:      s.clock(),
		SecurityCode:   code,
		State:          model.AttendanceCheckedIn,
		WasOverride:    decision.Overridden,
	}

	if err := s.attendance.Create(ctx, rec); err != nil {
		if err == ErrDuplicate {
			// Lost the race against a concurrent tap for the same person.
			return failureResult(item.PersonID, pkgerrors.DuplicateCheckIn)
		}
		if ctx.Err() != nil {
			return failureResult(item.PersonID, pkgerrors.Cancelled)
		}
		return s.itemFault(item.PersonID, "persist attendance", err)
	}

	result := dto.CheckInItemResult{
		PersonID:     item.PersonID,
		Success:      true,
		AttendanceID: rec.ID,
		SecurityCode: code,
		NearCapacity: decision.NearCapacity,
	}

	if decision.Kind == DecisionRedirected {
		redirected := decision.LocationID
		result.RedirectedLocationID = &redirected
	}

	if admitLoc.RequiresPager {
		assignment, err := s.pagers.Assign(ctx, admitLoc.CampusID, date, rec.ID, "")
		if err != nil {
			// The admission stands; the kiosk falls back to a pagerless
			// label rather than unwinding a committed record.
			logger.Logger.Warn("Pager assignment failed after admission",
				zap.Int64("attendance_id", rec.ID),
				zap.Error(err),
			)
		} else {
			rec.PagerNumber = &assignment.PagerNumber
			if err := s.attendance.Update(ctx, rec); err != nil {
				logger.Logger.Warn("Failed to stamp pager number on attendance record",
					zap.Int64("attendance_id", rec.ID),
					zap.Error(err),
				)
			}
			result.PagerNumber = &assignment.PagerNumber
		}
	}

	if decision.Overridden && overrideSupervisor != nil {
		s.auditSink.Record(ctx, audit.Entry{
			Action:       "checkin.capacity_override",
			ActorID:      overrideSupervisor.PersonID,
			ActorName:    overrideSupervisor.Name,
			TargetEntity: "attendance_record",
			TargetID:     rec.ID,
			Details: map[string]interface{}{
				"location_id": decision.LocationID,
				"schedule_id": item.ScheduleID,
			},
		})
	}

	metrics.RecordCheckIn(ctx, decision.Kind == DecisionRedirected, decision.Overridden)

	return result
}

// CheckOut transitions a record to CheckedOut and releases its pager.
// Checking out an already checked-out record is a no-op returning the
// original checkout time.
func (s *CheckInService) CheckOut(ctx context.Context, attendanceID int64) (*dto.CheckOutResponse, error) {
	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to load attendance record %d: %w", attendanceID, err)
	}

	if rec.State == model.AttendanceCheckedOut {
		out := rec.CheckInAt
		if rec.CheckOutAt != nil {
			out = *rec.CheckOutAt
		}
		return &dto.CheckOutResponse{AttendanceID: rec.ID, CheckedOutAt: out}, nil
	}

	now := s.clock()
	rec.State = model.AttendanceCheckedOut
	rec.CheckOutAt = &now

	if err := s.attendance.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to check out attendance record %d: %w", attendanceID, err)
	}

	if err := s.pagers.Release(ctx, rec.ID); err != nil {
		logger.Logger.Warn("Failed to release pager on checkout",
			zap.Int64("attendance_id", rec.ID),
			zap.Error(err),
		)
	}

	return &dto.CheckOutResponse{AttendanceID: rec.ID, CheckedOutAt: now}, nil
}

// Roster lists currently checked-in records for a kiosk screen.
func (s *CheckInService) Roster(ctx context.Context, locationID, scheduleID int64, date time.Time) ([]dto.RosterEntry, error) {
	records, err := s.attendance.ListCheckedIn(ctx, locationID, scheduleID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	entries := make([]dto.RosterEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, dto.RosterEntry{
			AttendanceID: rec.ID,
			PersonID:     rec.PersonID,
			LocationID:   rec.LocationID,
			PagerNumber:  rec.PagerNumber,
			CheckInAt:    rec.CheckInAt,
		})
	}
	return entries, nil
}

func parseItemDate(item dto.CheckInItem) (time.Time, error) {
	if item.PersonID <= 0 || item.LocationID <= 0 || item.ScheduleID <= 0 {
		return time.Time{}, fmt.Errorf("invalid check-in item ids")
	}
	return time.Parse("2006-01-02", item.Date)
}

func failureResult(personID int64, reason pkgerrors.Definition) dto.CheckInItemResult {
	return dto.CheckInItemResult{
		PersonID:    personID,
		ErrorReason: reason.Code,
	}
}

func (s *CheckInService) itemFault(personID int64, stage string, err error) dto.CheckInItemResult {
	logger.Logger.Error("Check-in item failed",
		zap.Int64("person_id", personID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return dto.CheckInItemResult{
		PersonID:    personID,
		ErrorReason: "INTERNAL_ERROR",
	}
}
