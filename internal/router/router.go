package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"FlockCheck/internal/handler"
	"FlockCheck/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// Supervisor sessions. Login is IP rate-limited: the PIN is the one
	// brute-forceable secret outside the pickup code limiter.
	supervisor := v1.Group("/supervisor")
	{
		supervisor.POST("/login", middleware.SupervisorLoginRateLimitMiddleware(), handler.SupervisorLogin)
		supervisor.POST("/logout", handler.SupervisorLogout)
	}

	// Kiosk check-in surface.
	checkIns := v1.Group("/check-ins")
	checkIns.Use(middleware.AuthMiddleware())
	checkIns.Use(middleware.GeneralRateLimitMiddleware())
	{
		checkIns.POST("/batch", handler.BatchCheckIn)
	}

	// Attendance record operations.
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware())
	attendance.Use(middleware.GeneralRateLimitMiddleware())
	{
		attendance.GET("/roster", handler.Roster)
		attendance.POST("/:id/checkout", handler.CheckOut)
		attendance.POST("/:id/verify-pickup", handler.VerifyPickup)
		attendance.POST("/:id/pickup", handler.RecordPickup)
		attendance.POST("/:id/page", handler.PagePager)
		attendance.POST("/:id/reprint", handler.ReprintLabel)
	}

	// Pager handouts not tied to a check-in.
	pagers := v1.Group("/pagers")
	pagers.Use(middleware.AuthMiddleware())
	{
		pagers.POST("/next", handler.NextPagerNumber)
	}

	// Location administration. Reads are open to kiosks for room pickers;
	// writes are supervisor-gated inside the handlers.
	locations := v1.Group("/locations")
	locations.Use(middleware.AuthMiddleware())
	{
		locations.GET("", handler.ListLocations)
		locations.GET("/:id", handler.GetLocation)
		locations.POST("", handler.CreateLocation)
		locations.PUT("/:id", handler.UpdateLocation)
	}
}
