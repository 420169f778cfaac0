package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/pkg/errors"
	"FlockCheck/pkg/response"
)

// attendanceParam parses the :id path parameter. On failure it writes the
// error response itself and returns ok=false.
func attendanceParam(ctx context.Context, c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, c, errors.ValidationError)
		return 0, false
	}

	return id, true
}
