package dto

import "time"

// SupervisorLoginRequest is a PIN login from a kiosk.
type SupervisorLoginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// SupervisorLoginResponse returns the session token for privileged actions.
type SupervisorLoginResponse struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	SupervisorName string    `json:"supervisor_name"`
}

// SupervisorLogoutRequest revokes a session.
type SupervisorLogoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// ReprintLabelRequest is a supervisor-gated label reprint.
type ReprintLabelRequest struct {
	SupervisorToken string `json:"supervisor_token" binding:"required"`
}

// ReprintLabelResponse carries the label fields for the printer.
type ReprintLabelResponse struct {
	AttendanceID int64  `json:"attendance_id"`
	PersonID     int64  `json:"person_id"`
	LocationID   int64  `json:"location_id"`
	SecurityCode string `json:"security_code"`
	PagerNumber  *int   `json:"pager_number,omitempty"`
}
