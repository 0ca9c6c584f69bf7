// Package divedirector models the many-to-many assignment of a
// dive-director-flagged questionnaire to a session, capped at four per
// session.
package divedirector

import "time"

// MaxPerSession is the hard cap enforced on write (§4.I, §7 TooManyDirectors).
const MaxPerSession = 4

// Assignment is one (session, questionnaire) dive-director pairing.
type Assignment struct {
	ID              string
	SessionID       string
	QuestionnaireID string

	CreatedAt time.Time
}
