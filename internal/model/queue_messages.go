package model

// PagerPageMessage asks the worker to page a guardian by SMS.
type PagerPageMessage struct {
	MessageID     string `json:"message_id"` // unique id, used for idempotency checks
	AttendanceID  int64  `json:"attendance_id"`
	PagerNumber   int    `json:"pager_number"`
	GuardianPhone string `json:"guardian_phone"`
	LocationName  string `json:"location_name"`
	Reason        string `json:"reason"`
	RequestedAt   string `json:"requested_at"`
}

// AuditEventMessage is an append-only audit trail entry forwarded to the
// external audit sink.
type AuditEventMessage struct {
	Payload      map[string]interface{} `json:"payload"`
	EventKey     string                 `json:"event_key"`
	Action       string                 `json:"action"`
	ActorID      int64                  `json:"actor_id"`
	ActorName    string                 `json:"actor_name"`
	TargetEntity string                 `json:"target_entity"`
	TargetID     int64                  `json:"target_id"`
	OccurredAt   string                 `json:"occurred_at"`
}
