package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/internal/model/dto"
	"FlockCheck/internal/registry"
	"FlockCheck/pkg/response"
)

// VerifyPickup checks a presented security code against a record.
// POST /v1/attendance/:id/verify-pickup
func VerifyPickup(ctx context.Context, c *app.RequestContext) {
	attendanceID, ok := attendanceParam(ctx, c)
	if !ok {
		return
	}

	var req dto.VerifyPickupRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := registry.Pickup().Verify(ctx, attendanceID, c.ClientIP(), req)
	if err != nil {
		// A rate-limited attempt still carries retry guidance for the kiosk.
		if result != nil {
			response.ErrorWithDetails(ctx, c, err, map[string]interface{}{
				"retry_after_seconds":          result.RetryAfterSeconds,
				"requires_supervisor_override": result.RequiresSupervisorOverride,
			})
			return
		}
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// RecordPickup finalizes a pickup and releases the pager.
// POST /v1/attendance/:id/pickup
func RecordPickup(ctx context.Context, c *app.RequestContext) {
	attendanceID, ok := attendanceParam(ctx, c)
	if !ok {
		return
	}

	var req dto.RecordPickupRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := registry.Pickup().Record(ctx, attendanceID, c.ClientIP(), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// PagePager queues an SMS page to the guardian holding the pager.
// POST /v1/attendance/:id/page
func PagePager(ctx context.Context, c *app.RequestContext) {
	attendanceID, ok := attendanceParam(ctx, c)
	if !ok {
		return
	}

	var req dto.PagePagerRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := registry.Pickup().Page(ctx, attendanceID, req); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{"queued": true})
}

// ReprintLabel reproduces the label fields for a record. Supervisor-gated.
// POST /v1/attendance/:id/reprint
func ReprintLabel(ctx context.Context, c *app.RequestContext) {
	attendanceID, ok := attendanceParam(ctx, c)
	if !ok {
		return
	}

	var req dto.ReprintLabelRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := registry.Pickup().Reprint(ctx, attendanceID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
