// Package competency models the four-tier competency hierarchy (domain,
// module, skill, validation stage) plus the per-person skill validations
// progressing through those stages.
package competency

import "time"

// Stage is one rung of the configurable, ordered validation ladder (e.g.
// "discovered", "practiced", "acquired").
type Stage struct {
	ID        string
	Code      string // unique
	Name      string
	Color     string
	Icon      string
	SortOrder int
	IsFinal   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain is the top tier of the competency tree, tagged to the diving level
// it applies to (e.g. "N1").
type Domain struct {
	ID          string
	DivingLevel string
	Name        string
	SortOrder   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Module groups skills under a Domain.
type Module struct {
	ID        string
	DomainID  string
	Name      string
	SortOrder int

	CreatedAt time.Time
	UpdatedAt time.Time
}

const defaultMinValidatorLevel = "E2"

// Skill is the terminal, assessable competency under a Module.
type Skill struct {
	ID                string
	ModuleID          string
	Name              string
	Description       *string
	SortOrder         int
	MinValidatorLevel string // defaults to "E2"

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSkill builds a Skill whose MinValidatorLevel is the default ("E2").
func NewSkill(moduleID, name string) Skill {
	return Skill{ModuleID: moduleID, Name: name, MinValidatorLevel: defaultMinValidatorLevel}
}

// Validation is the single current progression row for a (person, skill)
// pair: exactly one per pair, replaced (not appended) on re-validation.
type Validation struct {
	ID          string
	PersonID    string
	SkillID     string
	StageID     string
	ValidatorID string
	Date        time.Time
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
