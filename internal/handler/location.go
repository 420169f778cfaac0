package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/internal/model/dto"
	"FlockCheck/internal/registry"
	"FlockCheck/pkg/errors"
	"FlockCheck/pkg/response"
)

const supervisorTokenHeader = "X-Supervisor-Token"

// requireSupervisor validates the supervisor session header and audits the
// admin action. Returns false after writing the error response.
func requireSupervisor(ctx context.Context, c *app.RequestContext, action string, targetID int64) bool {
	token := string(c.GetHeader(supervisorTokenHeader))
	if _, err := registry.Supervisor().Authorize(ctx, token, action, "location", targetID); err != nil {
		response.Error(ctx, c, err)
		return false
	}

	return true
}

// ListLocations lists every location, active or not.
// GET /v1/locations
func ListLocations(ctx context.Context, c *app.RequestContext) {
	locations, err := registry.Location().List(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, locations, map[string]interface{}{
		"count": len(locations),
	})
}

// GetLocation returns one location by id.
// GET /v1/locations/:id
func GetLocation(ctx context.Context, c *app.RequestContext) {
	id, ok := locationParam(ctx, c)
	if !ok {
		return
	}

	location, err := registry.Location().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, location)
}

// CreateLocation validates thresholds and graph references, then creates.
// POST /v1/locations
func CreateLocation(ctx context.Context, c *app.RequestContext) {
	if !requireSupervisor(ctx, c, "location.create", 0) {
		return
	}

	var req dto.UpsertLocationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	location, err := registry.Location().Create(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, location)
}

// UpdateLocation re-validates the whole location, graph edges included.
// PUT /v1/locations/:id
func UpdateLocation(ctx context.Context, c *app.RequestContext) {
	id, ok := locationParam(ctx, c)
	if !ok {
		return
	}

	if !requireSupervisor(ctx, c, "location.update", id) {
		return
	}

	var req dto.UpsertLocationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	location, err := registry.Location().Update(ctx, id, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, location)
}

func locationParam(ctx context.Context, c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, errors.ValidationError)
		return 0, false
	}

	return id, true
}
