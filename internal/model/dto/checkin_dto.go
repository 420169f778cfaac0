package dto

import "time"

// BatchCheckInRequest is one kiosk submission, typically a family.
type BatchCheckInRequest struct {
	Requests        []CheckInItem `json:"requests" binding:"required"`
	SupervisorToken string        `json:"supervisor_token,omitempty"` // required when any item sets override
}

// CheckInItem names one person to admit.
type CheckInItem struct {
	PersonID   int64  `json:"person_id" binding:"required"`
	LocationID int64  `json:"location_id" binding:"required"`
	ScheduleID int64  `json:"schedule_id" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Override   bool   `json:"override,omitempty"`
}

// CheckInItemResult is the per-request outcome; failures never roll back
// sibling items.
type CheckInItemResult struct {
	PersonID             int64  `json:"person_id"`
	Success              bool   `json:"success"`
	AttendanceID         int64  `json:"attendance_id,omitempty"`
	SecurityCode         string `json:"security_code,omitempty"`
	PagerNumber          *int   `json:"pager_number,omitempty"`
	RedirectedLocationID *int64 `json:"redirected_location_id,omitempty"`
	NearCapacity         bool   `json:"near_capacity,omitempty"`
	ErrorReason          string `json:"error_reason,omitempty"`
}

// BatchCheckInResponse aggregates per-item results.
type BatchCheckInResponse struct {
	BatchID      string              `json:"batch_id"`
	Results      []CheckInItemResult `json:"results"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
}

// CheckOutResponse reports the checkout timestamp.
type CheckOutResponse struct {
	AttendanceID int64     `json:"attendance_id"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// RosterQuery filters today's roster for kiosk screens.
type RosterQuery struct {
	LocationID int64  `query:"location_id"`
	ScheduleID int64  `query:"schedule_id"`
	Date       string `query:"date"`
}

// RosterEntry is one present person on a roster screen.
type RosterEntry struct {
	AttendanceID int64     `json:"attendance_id"`
	PersonID     int64     `json:"person_id"`
	LocationID   int64     `json:"location_id"`
	PagerNumber  *int      `json:"pager_number,omitempty"`
	CheckInAt    time.Time `json:"check_in_at"`
}
