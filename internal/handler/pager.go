package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/internal/middleware"
	"FlockCheck/internal/model/dto"
	"FlockCheck/internal/registry"
	"FlockCheck/pkg/errors"
	"FlockCheck/pkg/response"
	"FlockCheck/utils"
)

// NextPagerNumber issues the next pager number in a campus and date scope,
// without binding it to an attendance record. Used by the front desk for
// walk-in pager handouts.
// POST /v1/pagers/next
func NextPagerNumber(ctx context.Context, c *app.RequestContext) {
	var req dto.NextPagerRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		response.Error(ctx, c, errors.ValidationError)
		return
	}

	number, err := registry.Pagers().Next(ctx, pagerCampus(ctx, c, req), date)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.NextPagerResponse{PagerNumber: number})
}

// pagerCampus scopes the handout to the station's campus claim when the
// token carries one. The body value only applies to unbound stations.
func pagerCampus(ctx context.Context, c *app.RequestContext, req dto.NextPagerRequest) *int64 {
	if campus, ok := middleware.GetCampusID(ctx, c); ok {
		return &campus
	}
	return req.CampusID
}
