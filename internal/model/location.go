package model

// Location is a physical room or area a person can be checked in to.
// ParentID forms the room hierarchy, OverflowLocationID the redirect chain;
// both graphs are id references into this flat table and must stay acyclic
// (validated on write, walked with a visited set on read).
type Location struct {
	BaseModel
	Name               string `gorm:"type:varchar(128);not null" json:"name"`
	ParentID           *int64 `gorm:"index" json:"parent_id,omitempty"`
	CampusID           *int64 `gorm:"index" json:"campus_id,omitempty"`
	SoftThreshold      *int   `json:"soft_threshold,omitempty"`
	FirmThreshold      *int   `json:"firm_threshold,omitempty"`
	StaffChildRatio    *int   `json:"staff_child_ratio,omitempty"`
	OverflowLocationID *int64 `gorm:"index" json:"overflow_location_id,omitempty"`
	AutoAssignOverflow bool   `gorm:"not null;default:false" json:"auto_assign_overflow"`
	RequiresPager      bool   `gorm:"not null;default:false" json:"requires_pager"`
	IsActive           bool   `gorm:"not null;default:true;index:idx_locations_active" json:"is_active"`
}

func (Location) TableName() string {
	return "locations"
}
