package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider is a mobile money operator a request pays out through.
type Provider string

const (
	ProviderBkash  Provider = "BKASH"
	ProviderNagad  Provider = "NAGAD"
	ProviderRocket Provider = "ROCKET"
)

var validProviders = map[Provider]bool{
	ProviderBkash:  true,
	ProviderNagad:  true,
	ProviderRocket: true,
}

// IsValid reports whether the provider is supported.
func (p Provider) IsValid() bool {
	return validProviders[p]
}

// ParseProvider normalizes and validates a provider string.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", ErrUnknownProvider
	}
	return p, nil
}

// RequestStatus is the lifecycle state of a money request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusAccepted  RequestStatus = "ACCEPTED"
	StatusFulfilled RequestStatus = "FULFILLED"
	StatusVerified  RequestStatus = "VERIFIED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
	StatusExpired   RequestStatus = "EXPIRED"
)

var validStatuses = map[RequestStatus]bool{
	StatusPending:   true,
	StatusAccepted:  true,
	StatusFulfilled: true,
	StatusVerified:  true,
	StatusRejected:  true,
	StatusCancelled: true,
	StatusExpired:   true,
}

// IsValid reports whether the status is one of the lifecycle states.
func (s RequestStatus) IsValid() bool {
	return validStatuses[s]
}

// ParseStatus normalizes and validates a status string, for listing filters.
func ParseStatus(s string) (RequestStatus, error) {
	st := RequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrUnknownStatus
	}
	return st, nil
}

// IsTerminal reports whether no further transitions are allowed.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusVerified, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// transitions is the full state machine. Any (from, to) pair not listed here
// is rejected with ErrInvalidTransition.
var transitions = map[RequestStatus][]RequestStatus{
	StatusPending:   {StatusAccepted, StatusCancelled, StatusExpired},
	StatusAccepted:  {StatusFulfilled, StatusCancelled},
	StatusFulfilled: {StatusVerified, StatusRejected},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Evidence is what a fulfiller submits to prove the external payout happened.
type Evidence struct {
	TransactionID string
	SenderNumber  string
	Screenshot    string
	Notes         string
}

// Validate checks the mandatory evidence fields.
func (e Evidence) Validate() error {
	if strings.TrimSpace(e.TransactionID) == "" || strings.TrimSpace(e.SenderNumber) == "" {
		return ErrMissingEvidence
	}
	return nil
}

// MoneyRequest is a peer-to-peer mobile money withdrawal request. The
// requester's wallet is debited total amount at creation; a fulfiller pays
// the recipient number externally and submits evidence, which an admin
// verifies.
type MoneyRequest struct {
	ID              string
	RequesterID     string
	FulfillerID     *string
	VerifiedByID    *string
	Provider        Provider
	Amount          decimal.Decimal
	Fees            decimal.Decimal
	TotalAmount     decimal.Decimal
	RecipientNumber string
	Reference       string
	Status          RequestStatus
	TransactionID   string
	SenderNumber    string
	Screenshot      string
	Notes           string
	Description     string
	CreatedAt       time.Time
	AcceptedAt      *time.Time
	FulfilledAt     *time.Time
	UpdatedAt       time.Time
}

// AcceptableBy checks the static accept guards for actor u. The concurrent
// acceptance race is resolved by the repository's conditional update, not
// here.
func (r *MoneyRequest) AcceptableBy(u *User) error {
	if u.ID == r.RequesterID {
		return ErrSelfFulfillment
	}
	if r.Status != StatusPending || r.FulfillerID != nil {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "accept"}
	}
	return nil
}

// FulfillableBy checks the fulfill guards for actor u with the given evidence.
func (r *MoneyRequest) FulfillableBy(u *User, ev Evidence) error {
	if r.FulfillerID == nil || *r.FulfillerID != u.ID {
		return ErrForbidden
	}
	if r.Status != StatusAccepted {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "fulfill"}
	}
	return ev.Validate()
}

// VerifiableBy checks the verify guards for actor u.
func (r *MoneyRequest) VerifiableBy(u *User) error {
	if !u.Role.CanVerify() {
		return ErrForbidden
	}
	if r.Status != StatusFulfilled {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "verify"}
	}
	return nil
}

// CancellableBy checks the cancel guards for actor u. The requester or an
// admin may cancel, and only while the request is PENDING or ACCEPTED. Once
// the payout is FULFILLED the only way out is the verification decision.
func (r *MoneyRequest) CancellableBy(u *User) error {
	if u.ID != r.RequesterID && !u.Role.CanVerify() {
		return ErrForbidden
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "cancel"}
	}
	return nil
}

// Expirable reports whether the request may be expired by the sweep given ttl.
func (r *MoneyRequest) Expirable(now time.Time, ttl time.Duration) error {
	if r.Status != StatusPending {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "expire"}
	}
	if now.Sub(r.CreatedAt) < ttl {
		return &TransitionError{RequestID: r.ID, From: r.Status, Event: "expire"}
	}
	return nil
}

// IsParticipant reports whether u created or is fulfilling the request.
func (r *MoneyRequest) IsParticipant(u *User) bool {
	if u.ID == r.RequesterID {
		return true
	}
	return r.FulfillerID != nil && *r.FulfillerID == u.ID
}
