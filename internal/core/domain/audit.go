package domain

import "time"

// AuditAction is the attempted state transition being recorded.
type AuditAction string

const (
	AuditCreate      AuditAction = "CREATE"
	AuditPost        AuditAction = "POST"
	AuditReverse     AuditAction = "REVERSE"
	AuditClosePeriod AuditAction = "CLOSE_PERIOD"
	AuditOpenPeriod  AuditAction = "OPEN_PERIOD"
)

// AuditOutcome is the result of the attempted transition.
type AuditOutcome string

const (
	AuditSuccess AuditOutcome = "SUCCESS"
	AuditFailure AuditOutcome = "FAILURE"
)

// AuditRecord is one append-only row per attempted state transition,
// success or failure. Failures carry the error kind in Reason.
type AuditRecord struct {
	At         time.Time    `json:"at"`
	TenantID   string       `json:"tenantID"`
	Actor      string       `json:"actor"`
	Action     AuditAction  `json:"action"`
	EntityKind string       `json:"entityKind"`
	EntityID   string       `json:"entityID"`
	Outcome    AuditOutcome `json:"outcome"`
	Reason     string       `json:"reason,omitempty"`
}
