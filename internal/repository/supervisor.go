package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"FlockCheck/internal/cache"
	"FlockCheck/internal/model"
	"FlockCheck/pkg/logger"
)

// SupervisorRepo is the gorm-backed service.SupervisorStore. Session reads
// go through the Redis cache; the database stays the source of truth for
// revocation.
type SupervisorRepo struct {
	db *gorm.DB
}

func NewSupervisorRepo(db *gorm.DB) *SupervisorRepo {
	return &SupervisorRepo{db: db}
}

func (r *SupervisorRepo) GetByPINHash(ctx context.Context, pinHash string) (*model.Supervisor, error) {
	var sup model.Supervisor
	err := r.db.WithContext(ctx).
		Where("pin_hash = ?", pinHash).
		First(&sup).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sup, nil
}

func (r *SupervisorRepo) GetSupervisor(ctx context.Context, id int64) (*model.Supervisor, error) {
	var sup model.Supervisor
	if err := r.db.WithContext(ctx).First(&sup, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sup, nil
}

func (r *SupervisorRepo) CreateSession(ctx context.Context, session *model.SupervisorSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return translate(err)
	}

	if err := cache.SetSession(ctx, session); err != nil {
		logger.Logger.Warn("Failed to cache supervisor session", zap.Error(err))
	}
	return nil
}

func (r *SupervisorRepo) GetSession(ctx context.Context, token string) (*model.SupervisorSession, error) {
	cached, err := cache.GetSession(ctx, token)
	if err != nil {
		logger.Logger.Warn("Supervisor session cache read failed", zap.Error(err))
	}
	if cached != nil && !cached.Revoked {
		return cached, nil
	}

	var session model.SupervisorSession
	err = r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *SupervisorRepo) RevokeSession(ctx context.Context, token string) error {
	err := r.db.WithContext(ctx).
		Model(&model.SupervisorSession{}).
		Where("token = ?", token).
		Update("revoked", true).Error
	if err != nil {
		return translate(err)
	}

	if err := cache.DeleteSession(ctx, token); err != nil {
		logger.Logger.Warn("Failed to evict supervisor session from cache", zap.Error(err))
	}
	return nil
}
