package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition is a business error code with its default message.
type Definition struct {
	Code    string
	Message string
}

// Request validation.
var (
	ValidationError = Definition{Code: "VALIDATION_ERROR", Message: "Malformed or incomplete request"}
	NotFound        = Definition{Code: "NOT_FOUND", Message: "Record not found"}
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// Check-in processing.
var (
	DuplicateCheckIn = Definition{Code: "DUPLICATE_CHECK_IN", Message: "Person already checked in for this schedule and date"}
	CapacityExceeded = Definition{Code: "CAPACITY_EXCEEDED", Message: "Location is at firm capacity"}
	OverflowCycle    = Definition{Code: "OVERFLOW_CYCLE", Message: "Overflow chain contains a cycle"}
	LocationInactive = Definition{Code: "LOCATION_INACTIVE", Message: "Location is not active"}
	Cancelled        = Definition{Code: "CANCELLED", Message: "Request cancelled before commit"}
)

// Security codes and pagers.
var (
	CodeSpaceExhausted = Definition{Code: "CODE_SPACE_EXHAUSTED", Message: "No free security code in scope"}
	PagerUnavailable   = Definition{Code: "PAGER_UNAVAILABLE", Message: "Pager number could not be issued"}
)

// Pickup verification.
var (
	RateLimited                = Definition{Code: "RATE_LIMITED", Message: "Too many failed verification attempts"}
	SupervisorOverrideRequired = Definition{Code: "SUPERVISOR_OVERRIDE_REQUIRED", Message: "Supervisor override required"}
)

// Supervisor sessions.
var (
	SupervisorPINInvalid     = Definition{Code: "SUPERVISOR_PIN_INVALID", Message: "Supervisor PIN invalid"}
	SupervisorSessionExpired = Definition{Code: "SUPERVISOR_SESSION_EXPIRED", Message: "Supervisor session expired"}
)

// Location administration.
var (
	ThresholdOrderInvalid = Definition{Code: "THRESHOLD_ORDER_INVALID", Message: "Soft threshold exceeds firm threshold"}
	LocationCycle         = Definition{Code: "LOCATION_CYCLE", Message: "Location graph contains a cycle"}
)

// Lookup resolves an error code back to its Definition.
var Lookup = map[string]Definition{
	ValidationError.Code:            ValidationError,
	NotFound.Code:                   NotFound,
	Unauthorized.Code:               Unauthorized,
	TooManyRequests.Code:            TooManyRequests,
	DuplicateCheckIn.Code:           DuplicateCheckIn,
	CapacityExceeded.Code:           CapacityExceeded,
	OverflowCycle.Code:              OverflowCycle,
	LocationInactive.Code:           LocationInactive,
	Cancelled.Code:                  Cancelled,
	CodeSpaceExhausted.Code:         CodeSpaceExhausted,
	PagerUnavailable.Code:           PagerUnavailable,
	RateLimited.Code:                RateLimited,
	SupervisorOverrideRequired.Code: SupervisorOverrideRequired,
	SupervisorPINInvalid.Code:       SupervisorPINInvalid,
	SupervisorSessionExpired.Code:   SupervisorSessionExpired,
	ThresholdOrderInvalid.Code:      ThresholdOrderInvalid,
	LocationCycle.Code:              LocationCycle,
}

// Get returns the Definition for a code, or a generic one if unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError tells a queue consumer to ack a message without processing
// it again (idempotency short-circuit).
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}
