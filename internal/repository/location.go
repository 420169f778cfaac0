package repository

import (
	"context"

	"gorm.io/gorm"

	"FlockCheck/internal/model"
)

// LocationRepo is the gorm-backed service.LocationStore.
type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Get(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	if err := r.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

func (r *LocationRepo) Create(ctx context.Context, loc *model.Location) error {
	return translate(r.db.WithContext(ctx).Create(loc).Error)
}

func (r *LocationRepo) Update(ctx context.Context, loc *model.Location) error {
	return translate(r.db.WithContext(ctx).Save(loc).Error)
}

func (r *LocationRepo) List(ctx context.Context) ([]*model.Location, error) {
	var locs []*model.Location
	if err := r.db.WithContext(ctx).Order("id").Find(&locs).Error; err != nil {
		return nil, translate(err)
	}
	return locs, nil
}
