package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging.
// Every successful state-changing operation appends exactly one entry.
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (request.accept, transfer.create, etc.)
	ResourceType string // Type of resource (money_request, transfer, account)
	ResourceID   string // ID of the resource
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data.
type JSON map[string]any

// AuditAction represents different types of auditable actions.
type AuditAction string

const (
	AuditActionAccountCreate AuditAction = "account.create"

	AuditActionRequestCreate  AuditAction = "request.create"
	AuditActionRequestAccept  AuditAction = "request.accept"
	AuditActionRequestFulfill AuditAction = "request.fulfill"
	AuditActionRequestVerify  AuditAction = "request.verify"
	AuditActionRequestReject  AuditAction = "request.reject"
	AuditActionRequestCancel  AuditAction = "request.cancel"
	AuditActionRequestExpire  AuditAction = "request.expire"

	AuditActionTransferCreate AuditAction = "transfer.create"
)

// AuditStatus represents the status of an audited action.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}
