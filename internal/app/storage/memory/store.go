// Package memory implements storage.Store with in-memory maps guarded by a
// single mutex. It backs tests and acts as the zero-configuration fallback
// when no database URL is configured.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/divedirector"
	"github.com/divingclub/opscore/internal/app/domain/emailjob"
	"github.com/divingclub/opscore/internal/app/domain/group"
	"github.com/divingclub/opscore/internal/app/domain/leveltemplate"
	"github.com/divingclub/opscore/internal/app/domain/outing"
	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu sync.RWMutex

	persons        map[string]person.Person
	groups         map[string]group.Group
	sessions       map[string]session.Session
	outings        map[string]outing.Outing
	questionnaires map[string]questionnaire.Questionnaire
	emailJobs      map[string]emailjob.Job

	stages      map[string]competency.Stage
	domains     map[string]competency.Domain
	modules     map[string]competency.Module
	skills      map[string]competency.Skill
	validations map[string]competency.Validation

	rotations  map[string]palanquee.Rotation
	palanquees map[string]palanquee.Palanquee
	members    map[string]palanquee.Member

	templates      map[string]leveltemplate.Template // keyed by level
	skillPositions map[string]leveltemplate.SkillPosition

	directors map[string]divedirector.Assignment
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		persons:        make(map[string]person.Person),
		groups:         make(map[string]group.Group),
		sessions:       make(map[string]session.Session),
		outings:        make(map[string]outing.Outing),
		questionnaires: make(map[string]questionnaire.Questionnaire),
		emailJobs:      make(map[string]emailjob.Job),
		stages:         make(map[string]competency.Stage),
		domains:        make(map[string]competency.Domain),
		modules:        make(map[string]competency.Module),
		skills:         make(map[string]competency.Skill),
		validations:    make(map[string]competency.Validation),
		rotations:      make(map[string]palanquee.Rotation),
		palanquees:     make(map[string]palanquee.Palanquee),
		members:        make(map[string]palanquee.Member),
		templates:      make(map[string]leveltemplate.Template),
		skillPositions: make(map[string]leveltemplate.SkillPosition),
		directors:      make(map[string]divedirector.Assignment),
	}
}

func newID() string { return uuid.NewString() }
