package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"FlockCheck/internal/model"
)

// AttendanceRepo is the gorm-backed service.AttendanceStore. No-duplicate
// semantics come from the composite unique index on (person, schedule,
// date); Create surfaces the violation as service.ErrDuplicate.
type AttendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

func (r *AttendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *AttendanceRepo) Get(ctx context.Context, id int64) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *AttendanceRepo) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	return translate(r.db.WithContext(ctx).Save(rec).Error)
}

func (r *AttendanceRepo) FindCheckedIn(ctx context.Context, personID, scheduleID int64, date time.Time) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("person_id = ? AND schedule_id = ? AND attendance_date = ? AND state = ?",
			personID, scheduleID, date, model.AttendanceCheckedIn).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *AttendanceRepo) CountCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("location_id = ? AND schedule_id = ? AND attendance_date = ? AND state = ?",
			locationID, scheduleID, date, model.AttendanceCheckedIn).
		Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return int(count), nil
}

func (r *AttendanceRepo) CodeExists(ctx context.Context, locationID int64, date time.Time, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("location_id = ? AND attendance_date = ? AND security_code = ? AND state = ?",
			locationID, date, code, model.AttendanceCheckedIn).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *AttendanceRepo) ListCheckedIn(ctx context.Context, locationID, scheduleID int64, date time.Time) ([]*model.AttendanceRecord, error) {
	var recs []*model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND schedule_id = ? AND attendance_date = ? AND state = ?",
			locationID, scheduleID, date, model.AttendanceCheckedIn).
		Order("check_in_at").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err)
	}
	return recs, nil
}

// ListStragglers returns records still checked in for a date, used by the
// end-of-day sweep.
func (r *AttendanceRepo) ListStragglers(ctx context.Context, date time.Time) ([]*model.AttendanceRecord, error) {
	var recs []*model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("attendance_date = ? AND state = ?", date, model.AttendanceCheckedIn).
		Find(&recs).Error
	if err != nil {
		return nil, translate(err)
	}
	return recs, nil
}
