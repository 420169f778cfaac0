package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"FlockCheck/internal/model"
	"FlockCheck/internal/service"
)

// PagerRepo is the gorm-backed service.PagerStore. The partial unique index
// on active (number, campus, date) rows turns a double issue into
// service.ErrDuplicate, which the sequencer retries.
type PagerRepo struct {
	db *gorm.DB
}

func NewPagerRepo(db *gorm.DB) *PagerRepo {
	return &PagerRepo{db: db}
}

func (r *PagerRepo) CreateAssignment(ctx context.Context, a *model.PagerAssignment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *PagerRepo) GetActiveByAttendance(ctx context.Context, attendanceID int64) (*model.PagerAssignment, error) {
	var a model.PagerAssignment
	err := r.db.WithContext(ctx).
		Where("attendance_id = ? AND is_active", attendanceID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *PagerRepo) DeactivateByAttendance(ctx context.Context, attendanceID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.PagerAssignment{}).
		Where("attendance_id = ? AND is_active", attendanceID).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PagerRepo) DeactivateForDate(ctx context.Context, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PagerAssignment{}).
		Where("assignment_date = ? AND is_active", date).
		Update("is_active", false)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}
