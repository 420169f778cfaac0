package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"FlockCheck/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
	CampusKey   = token.CampusKey
)

var authMiddleware *jwt.HertzJWTMiddleware

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "FlockCheck API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)

			station, ok := claims[IdentityKey].(string)
			if !ok || station == "" {
				return nil
			}

			// campus_id round-trips through JSON as float64
			if campus, ok := claims[CampusKey].(float64); ok {
				c.Set(CampusKey, int64(campus))
			}

			return station
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "UNAUTHORIZED",
					"message": message,
				},
			})
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	}

	return nil
}

// AuthMiddleware gates kiosk routes on a valid station token.
func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// GetStationID returns the authenticated kiosk station id.
func GetStationID(ctx context.Context, c *app.RequestContext) (string, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

// GetCampusID returns the campus the station is bound to, if any.
func GetCampusID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	v, exists := c.Get(CampusKey)
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}
