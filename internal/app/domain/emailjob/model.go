// Package emailjob models a one-shot invitation link ledger entry: the
// opaque token, its target, its expiry, and the composed invitation content.
package emailjob

import "time"

// Status is the lifecycle state of an email job. The core never transmits
// email itself; an external agent reads Generated jobs and reports back via
// MarkSent.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
)

// Job is one issued one-shot invitation.
type Job struct {
	ID        string
	Token     string // opaque 128-bit id, unique
	PersonID  string
	SessionID *string
	OutingID  *string

	Status     Status
	ExpiresAt  time.Time
	Consumed   bool
	RetryCount int
	LastError  *string

	Subject string
	Body    string

	SentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
