package model

import "time"

// Supervisor is a staff member allowed to authorize capacity overrides and
// label reprints. Only the salted PIN hash is stored.
type Supervisor struct {
	BaseModel
	PersonID int64  `gorm:"uniqueIndex;not null" json:"person_id"`
	Name     string `gorm:"type:varchar(128);not null" json:"name"`
	PINHash  string `gorm:"type:char(64);not null" json:"-"`
	CampusID *int64 `gorm:"index" json:"campus_id,omitempty"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

func (Supervisor) TableName() string {
	return "supervisors"
}

// SupervisorSession is a time-limited privileged session created by PIN
// login. Expired or revoked sessions fail closed.
type SupervisorSession struct {
	BaseModel
	Token        string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"token"`
	SupervisorID int64     `gorm:"not null;index" json:"supervisor_id"`
	ClientAddr   string    `gorm:"type:varchar(64);not null;default:''" json:"client_addr"`
	IssuedAt     time.Time `gorm:"type:timestamptz;not null" json:"issued_at"`
	ExpiresAt    time.Time `gorm:"type:timestamptz;not null" json:"expires_at"`
	Revoked      bool      `gorm:"not null;default:false" json:"revoked"`
}

func (SupervisorSession) TableName() string {
	return "supervisor_sessions"
}
