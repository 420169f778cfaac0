package model

import "time"

// PagerAssignment tracks a pager number handed to a guardian. Within one
// (campus, date) scope at most one active assignment may hold a number; the
// partial unique index below enforces that at write time.
type PagerAssignment struct {
	BaseModel
	PagerNumber    int       `gorm:"not null;uniqueIndex:idx_pager_scope_number,where:is_active" json:"pager_number"`
	CampusID       *int64    `gorm:"uniqueIndex:idx_pager_scope_number,where:is_active" json:"campus_id,omitempty"`
	AssignmentDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_pager_scope_number,where:is_active" json:"assignment_date"`
	AttendanceID   int64     `gorm:"not null;index" json:"attendance_id"`
	GuardianPhone  string    `gorm:"type:varchar(32);not null;default:''" json:"-"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
}

func (PagerAssignment) TableName() string {
	return "pager_assignments"
}
