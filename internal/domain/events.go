package domain

import "time"

// Event types
const (
	EventTypeRequestCreated   = "request.created"
	EventTypeRequestAccepted  = "request.accepted"
	EventTypeRequestFulfilled = "request.fulfilled"
	EventTypeRequestVerified  = "request.verified"
	EventTypeRequestRejected  = "request.rejected"
	EventTypeRequestCancelled = "request.cancelled"
	EventTypeRequestExpired   = "request.expired"
	EventTypeTransferCreated  = "transfer.created"
	EventTypeAccountCreated   = "account.created"
)

// Aggregate types
const (
	AggregateTypeRequest  = "money_request"
	AggregateTypeTransfer = "transfer"
	AggregateTypeAccount  = "account"
)

// OutboxEvent represents an event to be published.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
