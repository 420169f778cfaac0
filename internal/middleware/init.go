package middleware

import (
	"go.uber.org/zap"

	"FlockCheck/pkg/logger"
)

// Init wires up middleware state that needs the config loaded first.
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
