package dto

// UpsertLocationRequest creates or updates a location.
type UpsertLocationRequest struct {
	Name               string `json:"name" binding:"required"`
	ParentID           *int64 `json:"parent_id,omitempty"`
	CampusID           *int64 `json:"campus_id,omitempty"`
	SoftThreshold      *int   `json:"soft_threshold,omitempty"`
	FirmThreshold      *int   `json:"firm_threshold,omitempty"`
	StaffChildRatio    *int   `json:"staff_child_ratio,omitempty"`
	OverflowLocationID *int64 `json:"overflow_location_id,omitempty"`
	AutoAssignOverflow bool   `json:"auto_assign_overflow"`
	RequiresPager      bool   `json:"requires_pager"`
	IsActive           bool   `json:"is_active"`
}

// NextPagerRequest asks for the next pager number in a scope.
type NextPagerRequest struct {
	CampusID *int64 `json:"campus_id,omitempty"`
	Date     string `json:"date" binding:"required"`
}

// NextPagerResponse returns the issued number.
type NextPagerResponse struct {
	PagerNumber int `json:"pager_number"`
}
