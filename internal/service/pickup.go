package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlockCheck/internal/audit"
	"FlockCheck/internal/limiter"
	"FlockCheck/internal/model"
	"FlockCheck/internal/model/dto"
	pkgerrors "FlockCheck/pkg/errors"
	"FlockCheck/pkg/logger"
	"FlockCheck/pkg/metrics"
)

// PagePublisher hands a guardian page off to the delivery worker.
type PagePublisher interface {
	PublishPagerPage(ctx context.Context, msg model.PagerPageMessage) error
}

// PickupService verifies security codes at the pickup desk and records the
// resulting release. Verification failures are throttled per attendance
// record and client address.
type PickupService struct {
	attendance AttendanceStore
	pagers     PagerStore
	locations  LocationStore
	codes      *SecurityCodeAllocator
	sequencer  *PagerSequencer
	limiter    *limiter.Store
	sessions   SessionValidator
	publisher  PagePublisher
	auditSink  audit.Sink
	clock      func() time.Time
}

func NewPickupService(
	attendance AttendanceStore,
	pagers PagerStore,
	locations LocationStore,
	codes *SecurityCodeAllocator,
	sequencer *PagerSequencer,
	limiterStore *limiter.Store,
	sessions SessionValidator,
	publisher PagePublisher,
	auditSink audit.Sink,
) *PickupService {
	return &PickupService{
		attendance: attendance,
		pagers:     pagers,
		locations:  locations,
		codes:      codes,
		sequencer:  sequencer,
		limiter:    limiterStore,
		sessions:   sessions,
		publisher:  publisher,
		auditSink:  auditSink,
		clock:      time.Now,
	}
}

// Verify checks a presented security code against an attendance record.
// Failed attempts count toward the rate limit; once blocked, attempts are
// rejected without touching the code at all.
func (s *PickupService) Verify(
	ctx context.Context,
	attendanceID int64,
	clientAddr string,
	req dto.VerifyPickupRequest,
) (*dto.VerifyPickupResponse, error) {
	if req.SecurityCode == "" {
		return nil, pkgerrors.ValidationError
	}

	key := limiter.Key{AttendanceID: attendanceID, ClientAddr: clientAddr}

	if blocked, retryAfter := s.limiter.Check(key); blocked {
		metrics.RecordPickupBlocked(ctx)
		seconds := int(retryAfter / time.Second)
		if retryAfter%time.Second > 0 {
			seconds++
		}
		return &dto.VerifyPickupResponse{
			RequiresSupervisorOverride: true,
			RetryAfterSeconds:          seconds,
		}, pkgerrors.RateLimited
	}

	ok, err := s.codes.Verify(ctx, attendanceID, req.SecurityCode)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to verify security code: %w", err)
	}

	if !ok {
		s.limiter.Record(key, limiter.OutcomeFailure)
		return &dto.VerifyPickupResponse{Authorized: false}, nil
	}

	s.limiter.Record(key, limiter.OutcomeSuccess)
	return &dto.VerifyPickupResponse{Authorized: true}, nil
}

// Record finalizes a pickup. An unauthorized release requires a supervisor
// override with a valid session; the override is audited with the child's
// record and the releasing supervisor.
func (s *PickupService) Record(
	ctx context.Context,
	attendanceID int64,
	clientAddr string,
	req dto.RecordPickupRequest,
) (*dto.CheckOutResponse, error) {
	if req.PickupPersonName == "" {
		return nil, pkgerrors.ValidationError
	}

	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to load attendance record %d: %w", attendanceID, err)
	}

	if !req.WasAuthorized {
		if !req.SupervisorOverride {
			return nil, pkgerrors.SupervisorOverrideRequired
		}
		sup, err := s.sessions.Validate(ctx, req.SupervisorToken)
		if err != nil {
			return nil, err
		}
		s.auditSink.Record(ctx, audit.Entry{
			Action:       "pickup.supervisor_override",
			ActorID:      sup.PersonID,
			ActorName:    sup.Name,
			TargetEntity: "attendance_record",
			TargetID:     rec.ID,
			Details: map[string]interface{}{
				"pickup_person": req.PickupPersonName,
				"client_addr":   clientAddr,
			},
		})
		s.limiter.Record(limiter.Key{AttendanceID: attendanceID, ClientAddr: clientAddr}, limiter.OutcomeOverrideRequested)
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
	rec.PickedUpBy = req.PickupPersonName

	if err := s.attendance.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record pickup for attendance %d: %w", attendanceID, err)
	}

	if err := s.sequencer.Release(ctx, rec.ID); err != nil {
		logger.Logger.Warn("Failed to release pager after pickup",
			zap.Int64("attendance_id", rec.ID),
			zap.Error(err),
		)
	}

	return &dto.CheckOutResponse{AttendanceID: rec.ID, CheckedOutAt: now}, nil
}

// Page queues an SMS page to the guardian holding the record's pager.
func (s *PickupService) Page(ctx context.Context, attendanceID int64, req dto.PagePagerRequest) error {
	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if err == ErrNotFound {
			return pkgerrors.NotFound
		}
		return fmt.Errorf("failed to load attendance record %d: %w", attendanceID, err)
	}

	assignment, err := s.pagers.GetActiveByAttendance(ctx, rec.ID)
	if err != nil {
		if err == ErrNotFound {
			return pkgerrors.PagerUnavailable
		}
		return fmt.Errorf("failed to load pager assignment for attendance %d: %w", rec.ID, err)
	}

	locationName := ""
	if loc, err := s.locations.Get(ctx, rec.LocationID); err == nil {
		locationName = loc.Name
	}

	msg := model.PagerPageMessage{
		MessageID:     uuid.NewString(),
		AttendanceID:  rec.ID,
		PagerNumber:   assignment.PagerNumber,
		GuardianPhone: assignment.GuardianPhone,
		LocationName:  locationName,
		Reason:        req.Reason,
		RequestedAt:   s.clock().Format(time.RFC3339),
	}

	if err := s.publisher.PublishPagerPage(ctx, msg); err != nil {
		metrics.RecordPagerPage(ctx, "publish_failed")
		return fmt.Errorf("failed to publish pager page: %w", err)
	}

	metrics.RecordPagerPage(ctx, "queued")
	logger.Logger.Info("Guardian page queued",
		zap.Int64("attendance_id", rec.ID),
		zap.Int("pager_number", assignment.PagerNumber),
	)
	return nil
}

// Reprint reproduces the label fields for a record. Supervisor-gated: lost
// labels are a pickup-security event, so the reprint is audited.
func (s *PickupService) Reprint(
	ctx context.Context,
	attendanceID int64,
	req dto.ReprintLabelRequest,
) (*dto.ReprintLabelResponse, error) {
	if _, err := s.sessions.Authorize(ctx, req.SupervisorToken, "label.reprint", "attendance_record", attendanceID); err != nil {
		return nil, err
	}

	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.NotFound
		}
		return nil, fmt.Errorf("failed to load attendance record %d: %w", attendanceID, err)
	}

	return &dto.ReprintLabelResponse{
		AttendanceID: rec.ID,
		PersonID:     rec.PersonID,
		LocationID:   rec.LocationID,
		SecurityCode: rec.SecurityCode,
		PagerNumber:  rec.PagerNumber,
	}, nil
}
