package schedule

// End-of-day closeout: check out stragglers, deactivate pager assignments,
// and leave the next day's numbering scopes clean.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"FlockCheck/internal/cache"
	"FlockCheck/internal/model"
	"FlockCheck/internal/repository"
	"FlockCheck/pkg/logger"
	"FlockCheck/storage/database"
	"FlockCheck/utils"
)

const closeoutLockTTL = 30 * time.Minute

var (
	closeoutOnce sync.Once
	closeoutInst *CloseoutScheduler
)

type CloseoutScheduler struct {
	logger      *zap.Logger
	jobRunning  bool
	jobMu       sync.Mutex
	lastRunTime time.Time
}

func GetCloseout() *CloseoutScheduler {
	closeoutOnce.Do(func() {
		closeoutInst = &CloseoutScheduler{
			logger: logger.Logger,
		}
	})
	return closeoutInst
}

// Run sweeps one attendance date. A Redis lock keeps concurrent scheduler
// instances from double-sweeping; within a process the jobRunning flag does
// the same.
func (s *CloseoutScheduler) Run(ctx context.Context, date time.Time) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Closeout already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	date = utils.DateOnly(date)
	dateKey := utils.FormatDate(date)

	locked, err := cache.TryLock(ctx, "closeout:"+dateKey, closeoutLockTTL)
	if err != nil {
		return fmt.Errorf("failed to take closeout lock: %w", err)
	}
	if !locked {
		s.logger.Info("Closeout lock held elsewhere, skipping",
			zap.String("date", dateKey),
		)
		return nil
	}
	defer cache.Unlock(ctx, "closeout:"+dateKey)

	startTime := time.Now()
	s.lastRunTime = startTime

	s.logger.Info("Starting end-of-day closeout",
		zap.String("date", dateKey),
	)

	db := database.DB()
	attendance := repository.NewAttendanceRepo(db)
	pagers := repository.NewPagerRepo(db)

	swept, err := s.sweepStragglers(ctx, attendance, date)
	if err != nil {
		return err
	}

	deactivated, err := pagers.DeactivateForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to deactivate pager assignments: %w", err)
	}

	s.logger.Info("Closeout finished",
		zap.String("date", dateKey),
		zap.Int("stragglers_checked_out", swept),
		zap.Int64("pagers_deactivated", deactivated),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}

func (s *CloseoutScheduler) sweepStragglers(ctx context.Context, attendance *repository.AttendanceRepo, date time.Time) (int, error) {
	stragglers, err := attendance.ListStragglers(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list stragglers: %w", err)
	}

	now := time.Now()
	swept := 0
	for _, rec := range stragglers {
		rec.State = model.AttendanceCheckedOut
		rec.CheckOutAt = &now
		rec.PickedUpBy = "end_of_day_closeout"

		if err := attendance.Update(ctx, rec); err != nil {
			s.logger.Error("Failed to check out straggler",
				zap.Int64("attendance_id", rec.ID),
				zap.Int64("person_id", rec.PersonID),
				zap.Error(err),
			)
			continue
		}
		swept++
	}

	return swept, nil
}
