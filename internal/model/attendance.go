package model

import "time"

// AttendanceState is the attendance record lifecycle state.
type AttendanceState string

const (
	AttendanceCheckedIn  AttendanceState = "checked_in"
	AttendanceCheckedOut AttendanceState = "checked_out"
)

// AttendanceRecord is one person's presence at a location for a schedule and
// date. The partial unique index on (person, schedule, date) over checked-in
// rows is the idempotency key that absorbs doubly-tapped kiosk buttons; the
// constraint trip is reported back as a duplicate check-in, never a raw
// storage error. Checked-out rows leave the index, so a mid-morning checkout
// can be followed by a fresh check-in for the same schedule and day.
type AttendanceRecord struct {
	BaseModel
	PublicID       int64           `gorm:"uniqueIndex;not null" json:"public_id"`
	PersonID       int64           `gorm:"not null;uniqueIndex:idx_attendance_person_schedule_date,where:state = 'checked_in'" json:"person_id"`
	LocationID     int64           `gorm:"not null;index:idx_attendance_location_date" json:"location_id"`
	ScheduleID     int64           `gorm:"not null;uniqueIndex:idx_attendance_person_schedule_date,where:state = 'checked_in'" json:"schedule_id"`
	AttendanceDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_attendance_person_schedule_date,where:state = 'checked_in';index:idx_attendance_location_date" json:"attendance_date"`
	CheckInAt      time.Time       `gorm:"type:timestamptz;not null" json:"check_in_at"`
	CheckOutAt     *time.Time      `gorm:"type:timestamptz" json:"check_out_at,omitempty"`
	SecurityCode   string          `gorm:"type:varchar(9);not null;index:idx_attendance_location_date" json:"security_code"`
	PagerNumber    *int            `json:"pager_number,omitempty"`
	State          AttendanceState `gorm:"type:varchar(16);not null;default:'checked_in'" json:"state"`
	WasOverride    bool            `gorm:"not null;default:false" json:"was_override"`
	PickedUpBy     string          `gorm:"type:varchar(128);not null;default:''" json:"picked_up_by,omitempty"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
