package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"FlockCheck/internal/model/dto"
	"FlockCheck/internal/registry"
	"FlockCheck/pkg/response"
)

// SupervisorLogin opens a PIN-authenticated override session.
// POST /v1/supervisor/login
func SupervisorLogin(ctx context.Context, c *app.RequestContext) {
	var req dto.SupervisorLoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := registry.Supervisor().Login(ctx, req.PIN, c.ClientIP())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SupervisorLogout revokes a session token.
// POST /v1/supervisor/logout
func SupervisorLogout(ctx context.Context, c *app.RequestContext) {
	var req dto.SupervisorLogoutRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	revoked, err := registry.Supervisor().Logout(ctx, req.Token)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{"revoked": revoked})
}
