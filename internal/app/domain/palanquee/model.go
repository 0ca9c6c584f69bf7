// Package palanquee models the session→rotation→palanquée→member tree: the
// nested composition of dive teams within rotations of one session.
package palanquee

import "time"

// Rotation is one cycle of palanquées launching from the same session,
// auto-numbered within the session starting at 1.
type Rotation struct {
	ID        string
	SessionID string
	Number    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Params is the shared shape of planned and actual dive parameters; the two
// are independent, fully optional sets of four values
// (departure/duration/depth/return).
type Params struct {
	Departure *time.Time
	Duration  *int // minutes
	Depth     *float64 // meters
	Return    *time.Time
}

// Palanquee is a single dive team within a Rotation, auto-numbered within it.
type Palanquee struct {
	ID         string
	RotationID string
	Number     int
	CallSign   *string

	Planned Params
	Actual  Params

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a palanquée member's function within the team.
type Role string

const (
	RoleInstructor Role = "E"  // encadrant
	RoleGuide      Role = "GP" // guide de palanquée
	RoleDiver      Role = "P"  // plongeur
)

// rolePriority orders members within a palanquée's display list.
var rolePriority = map[Role]int{
	RoleInstructor: 0,
	RoleGuide:      1,
	RoleDiver:      2,
}

// RolePriority returns the ordering weight for r (lower sorts first).
func RolePriority(r Role) int {
	if p, ok := rolePriority[r]; ok {
		return p
	}
	return len(rolePriority)
}

// Gas is the breathing mix a member plans to use.
type Gas string

const (
	GasAir     Gas = "Air"
	GasNitrox  Gas = "Nitrox"
	GasTrimix  Gas = "Trimix"
	GasHeliox  Gas = "Heliox"
)

// Member is one questionnaire's assignment into a Palanquee. The unique key
// is (PalanqueeID, QuestionnaireID); the same questionnaire may appear in
// several rotations of the same session.
type Member struct {
	ID              string
	PalanqueeID     string
	QuestionnaireID string
	Role            Role
	Gas             Gas

	CreatedAt time.Time
	UpdatedAt time.Time
}
