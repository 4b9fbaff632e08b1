package domain

import "strings"

// Visibility rules for money requests:
//   - participants (requester or fulfiller) see the request in any status
//   - everyone may browse PENDING requests from other users
//   - admins see everything
// Non-participants get a redacted view: the recipient number is masked, the
// counterpart is reduced to a first name and a partially masked email, and
// fulfillment evidence is withheld.

// VisibleTo reports whether actor u may see request r at all.
func (r *MoneyRequest) VisibleTo(u *User) bool {
	if u.Role.SeesEverything() {
		return true
	}
	if r.IsParticipant(u) {
		return true
	}
	return r.Status == StatusPending
}

// Party is the reduced identity of a request participant as shown to others.
type Party struct {
	ID          string
	DisplayName string
	Email       string
}

// RequestView is a money request as presented to a specific actor, with
// redaction already applied.
type RequestView struct {
	Request   MoneyRequest
	Requester *Party
	Fulfiller *Party
	Redacted  bool
}

// BuildView assembles the actor-specific view of r. requester is required;
// fulfiller may be nil while the request is unaccepted.
func BuildView(r *MoneyRequest, requester, fulfiller *Account, actor *User) *RequestView {
	full := actor.Role.SeesEverything() || r.IsParticipant(actor)

	view := &RequestView{Request: *r, Redacted: !full}
	if full {
		view.Requester = fullParty(requester)
		view.Fulfiller = fullParty(fulfiller)
		return view
	}

	view.Request.RecipientNumber = MaskNumber(r.RecipientNumber)
	view.Request.TransactionID = ""
	view.Request.SenderNumber = ""
	view.Request.Screenshot = ""
	view.Requester = reducedParty(requester)
	view.Fulfiller = reducedParty(fulfiller)

	return view
}

func fullParty(a *Account) *Party {
	if a == nil {
		return nil
	}
	return &Party{ID: a.ID, DisplayName: a.FullName, Email: a.Email}
}

func reducedParty(a *Account) *Party {
	if a == nil {
		return nil
	}
	return &Party{ID: a.ID, DisplayName: a.FirstName(), Email: MaskEmail(a.Email)}
}

const (
	maskKeepFirst = 3
	maskKeepLast  = 2
)

// MaskNumber keeps the first 3 and last 2 digits of a mobile number and
// masks the middle. Short numbers are fully masked.
func MaskNumber(number string) string {
	n := len(number)
	if n <= maskKeepFirst+maskKeepLast {
		return strings.Repeat("*", n)
	}
	return number[:maskKeepFirst] + strings.Repeat("*", n-maskKeepFirst-maskKeepLast) + number[n-maskKeepLast:]
}

// MaskEmail keeps the first character of the local part and the full domain.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
