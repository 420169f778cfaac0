// Package registry wires repositories, caches and the broker into the service
// singletons the handlers use. Services themselves are constructor-injected
// so tests can run them against in-memory stores.
package registry

import (
	"context"
	"sync"
	"time"

	"FlockCheck/config"
	"FlockCheck/internal/cache"
	"FlockCheck/internal/limiter"
	"FlockCheck/internal/queue"
	"FlockCheck/internal/repository"
	"FlockCheck/internal/service"
	"FlockCheck/pkg/snowflake"
	"FlockCheck/storage/database"
	"FlockCheck/utils"
)

var (
	checkInService    *service.CheckInService
	pickupService     *service.PickupService
	supervisorService *service.SupervisorService
	locationService   *service.LocationService
	pagerSequencer    *service.PagerSequencer

	checkInOnce    sync.Once
	pickupOnce     sync.Once
	supervisorOnce sync.Once
	locationOnce   sync.Once
	pagerOnce      sync.Once
)

func CheckIn() *service.CheckInService {
	checkInOnce.Do(func() {
		db := database.DB()
		locations := repository.NewLocationRepo(db)
		attendance := repository.NewAttendanceRepo(db)

		checkInService = service.NewCheckInService(
			locations,
			attendance,
			service.NewCapacityResolver(locations, attendance),
			codeAllocator(attendance),
			Pagers(),
			Supervisor(),
			queue.MQSink{},
			snowflake.NextID,
		)
	})

	return checkInService
}

func Pickup() *service.PickupService {
	pickupOnce.Do(func() {
		db := database.DB()
		attendance := repository.NewAttendanceRepo(db)

		window := time.Duration(config.Cfg.PickupFailureWindowMinutes) * time.Minute
		failures := limiter.NewStore(config.Cfg.PickupFailureLimit, window, time.Now)
		go failures.Sweep(context.Background(), window)

		pickupService = service.NewPickupService(
			attendance,
			repository.NewPagerRepo(db),
			repository.NewLocationRepo(db),
			codeAllocator(attendance),
			Pagers(),
			failures,
			Supervisor(),
			queue.NewPublisher(),
			queue.MQSink{},
		)
	})

	return pickupService
}

func Supervisor() *service.SupervisorService {
	supervisorOnce.Do(func() {
		supervisorService = service.NewSupervisorService(
			repository.NewSupervisorRepo(database.DB()),
			queue.MQSink{},
			time.Duration(config.Cfg.SupervisorSessionMinutes)*time.Minute,
			utils.HashPIN,
		)
	})

	return supervisorService
}

func Location() *service.LocationService {
	locationOnce.Do(func() {
		locationService = service.NewLocationService(repository.NewLocationRepo(database.DB()))
	})

	return locationService
}

func Pagers() *service.PagerSequencer {
	pagerOnce.Do(func() {
		pagerSequencer = service.NewPagerSequencer(
			cache.NewPagerCounterStore(),
			repository.NewPagerRepo(database.DB()),
			config.Cfg.PagerNumberBase,
		)
	})

	return pagerSequencer
}

func codeAllocator(attendance service.AttendanceStore) *service.SecurityCodeAllocator {
	return service.NewSecurityCodeAllocator(
		attendance,
		config.Cfg.SecurityCodeLength,
		config.Cfg.SecurityCodeMaxAttempts,
	)
}
