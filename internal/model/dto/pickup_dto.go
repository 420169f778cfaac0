package dto

// VerifyPickupRequest checks a security code before releasing a child.
type VerifyPickupRequest struct {
	SecurityCode string `json:"security_code" binding:"required"`
}

// VerifyPickupResponse reports whether the presenter may pick up, or whether
// a supervisor has to step in. RetryAfterSeconds is set only when the
// attempt was rate limited.
type VerifyPickupResponse struct {
	Authorized                 bool `json:"authorized"`
	RequiresSupervisorOverride bool `json:"requires_supervisor_override"`
	RetryAfterSeconds          int  `json:"retry_after_seconds,omitempty"`
}

// RecordPickupRequest finalizes a pickup.
type RecordPickupRequest struct {
	PickupPersonName   string `json:"pickup_person_name" binding:"required"`
	WasAuthorized      bool   `json:"was_authorized"`
	SupervisorOverride bool   `json:"supervisor_override"`
	SupervisorToken    string `json:"supervisor_token,omitempty"`
}

// PagePagerRequest asks for an SMS page to the pager's guardian.
type PagePagerRequest struct {
	Reason string `json:"reason"`
}
