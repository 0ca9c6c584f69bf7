// Package questionnaire models a per-person, per-session-or-outing
// registration questionnaire.
package questionnaire

import "time"

// Questionnaire is a single registration record. Exactly one of SessionID or
// OutingID must be set.
type Questionnaire struct {
	ID        string
	PersonID  string
	SessionID *string
	OutingID  *string

	IsEncadrant bool

	WantsRegulator  bool
	WantsNitrox     bool
	WantsSecondReg  bool
	WantsStab       bool
	StabSize        *string

	NitroxTrainingBase bool
	NitroxConfirmed    bool
	NitroxLegacy       bool

	HasCar   bool
	CarSeats *int

	ComesFromIssoire  bool
	IsDirecteurPlongee bool

	Comments *string

	SubmittedAt *time.Time // nil = not submitted

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnyNitroxTraining reports whether any of the three nitrox-training flags is
// set, used by the palanquée composition model's gas defaulting (§4.F).
func (q Questionnaire) AnyNitroxTraining() bool {
	return q.NitroxTrainingBase || q.NitroxConfirmed || q.NitroxLegacy
}

// Valid reports whether exactly one of SessionID or OutingID is set, per the
// §3 exclusivity invariant.
func (q Questionnaire) Valid() bool {
	return (q.SessionID != nil) != (q.OutingID != nil)
}
