package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/internal/middleware"
	"FlockCheck/internal/model/dto"
	"FlockCheck/internal/registry"
	"FlockCheck/internal/service"
	"FlockCheck/pkg/errors"
	"FlockCheck/pkg/metrics"
	"FlockCheck/pkg/response"
	"FlockCheck/utils"
)

// BatchCheckIn processes one kiosk submission, usually a family.
// POST /v1/check-ins/batch
func BatchCheckIn(ctx context.Context, c *app.RequestContext) {
	var req dto.BatchCheckInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	caller, ok := callerIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	start := time.Now()
	result, err := registry.CheckIn().ProcessBatch(ctx, caller, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	metrics.RecordBatchDuration(ctx, time.Since(start).Seconds(), len(req.Requests))

	response.Success(ctx, c, result)
}

// CheckOut marks a record as checked out. Idempotent.
// POST /v1/attendance/:id/checkout
func CheckOut(ctx context.Context, c *app.RequestContext) {
	attendanceID, ok := attendanceParam(ctx, c)
	if !ok {
		return
	}

	result, err := registry.CheckIn().CheckOut(ctx, attendanceID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Roster lists who is currently checked in for a location and schedule.
// GET /v1/attendance/roster
func Roster(ctx context.Context, c *app.RequestContext) {
	var query dto.RosterQuery
	if err := c.BindQuery(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if query.LocationID <= 0 || query.ScheduleID <= 0 {
		response.Error(ctx, c, errors.ValidationError)
		return
	}

	date := utils.DateOnly(time.Now())
	if query.Date != "" {
		parsed, err := utils.ParseDate(query.Date)
		if err != nil {
			response.Error(ctx, c, errors.ValidationError)
			return
		}
		date = parsed
	}

	entries, err := registry.CheckIn().Roster(ctx, query.LocationID, query.ScheduleID, date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, entries, map[string]interface{}{
		"count": len(entries),
		"date":  utils.FormatDate(date),
	})
}

func callerIdentity(ctx context.Context, c *app.RequestContext) (service.Identity, bool) {
	station, ok := middleware.GetStationID(ctx, c)
	if !ok {
		return service.Identity{}, false
	}

	return service.Identity{
		Role:      "kiosk",
		StationID: station,
	}, true
}
