// Package session models a single dive session, standalone or as one dive of
// a multi-day outing.
package session

import "time"

// Session is one dive (or club outing) gathering.
type Session struct {
	ID               string
	Name             string
	StartDate        time.Time
	EndDate          *time.Time
	Location         string
	Description      *string
	SummaryToken     *string
	OptimizationMode bool

	OutingID   *string
	DiveNumber *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReferenceDate is end_date if set, else start_date; it anchors token expiry
// and public summary access per §6.
func (s Session) ReferenceDate() time.Time {
	if s.EndDate != nil {
		return *s.EndDate
	}
	return s.StartDate
}
