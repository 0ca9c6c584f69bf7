// Package outing models a multi-day club outing that owns a generated set of
// per-dive sessions.
package outing

import "time"

// Type distinguishes the nature of an outing.
type Type string

const (
	TypeExploration Type = "exploration"
	TypeTechnique   Type = "technique"
)

// Outing is a multi-day event generating N dive sessions.
type Outing struct {
	ID                string
	Name              string
	Location          string
	Type              Type
	StartDate         time.Time
	EndDate           time.Time // derived: start_date + (days_count-1)
	DaysCount         int       // [1,14]
	DivesPerDay       int       // [1,4]
	NitroxCompatible  bool
	SummaryToken      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReferenceDate mirrors session.Session.ReferenceDate for the outing-level
// summary token and bulk-issue expiry computations.
func (o Outing) ReferenceDate() time.Time {
	return o.EndDate
}

// TotalDives is days_count * dives_per_day, the number of sessions generated.
func (o Outing) TotalDives() int {
	return o.DaysCount * o.DivesPerDay
}
