// Package storage defines the persistence contracts every service in this
// module depends on. Two implementations exist: an in-memory store (tests,
// default fallback) and a Postgres-backed store.
package storage

import (
	"context"
	"time"

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

// PersonStore persists club members.
type PersonStore interface {
	CreatePerson(ctx context.Context, p person.Person) (person.Person, error)
	UpdatePerson(ctx context.Context, p person.Person) (person.Person, error)
	GetPerson(ctx context.Context, id string) (person.Person, error)
	GetPersonByEmail(ctx context.Context, email string) (person.Person, error)
	ListPersons(ctx context.Context) ([]person.Person, error)
	DeletePerson(ctx context.Context, id string) error
}

// GroupStore persists ACL groups.
type GroupStore interface {
	CreateGroup(ctx context.Context, g group.Group) (group.Group, error)
	GetGroup(ctx context.Context, id string) (group.Group, error)
	ListGroups(ctx context.Context) ([]group.Group, error)
	DeleteGroup(ctx context.Context, id string) error
}

// SessionStore persists single dive sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s session.Session) (session.Session, error)
	UpdateSession(ctx context.Context, s session.Session) (session.Session, error)
	GetSession(ctx context.Context, id string) (session.Session, error)
	GetSessionBySummaryToken(ctx context.Context, token string) (session.Session, error)
	ListSessions(ctx context.Context) ([]session.Session, error)
	ListSessionsByOuting(ctx context.Context, outingID string) ([]session.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// OutingStore persists multi-day outings.
type OutingStore interface {
	CreateOuting(ctx context.Context, o outing.Outing) (outing.Outing, error)
	GetOuting(ctx context.Context, id string) (outing.Outing, error)
	ListOutings(ctx context.Context) ([]outing.Outing, error)
	DeleteOuting(ctx context.Context, id string) error // cascades to sessions
}

// QuestionnaireStore persists registration questionnaires.
type QuestionnaireStore interface {
	CreateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error)
	UpdateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error)
	GetQuestionnaire(ctx context.Context, id string) (questionnaire.Questionnaire, error)
	GetQuestionnaireBySession(ctx context.Context, sessionID, personID string) (questionnaire.Questionnaire, error)
	GetQuestionnaireByOuting(ctx context.Context, outingID, personID string) (questionnaire.Questionnaire, error)
	ListQuestionnairesBySession(ctx context.Context, sessionID string) ([]questionnaire.Questionnaire, error)
	ListQuestionnairesByOuting(ctx context.Context, outingID string) ([]questionnaire.Questionnaire, error)
	DeleteQuestionnaire(ctx context.Context, id string) error
}

// EmailJobStore persists the one-shot link ledger.
type EmailJobStore interface {
	CreateEmailJob(ctx context.Context, j emailjob.Job) (emailjob.Job, error)
	GetEmailJobByToken(ctx context.Context, token string) (emailjob.Job, error)
	GetEmailJobByPersonAndSession(ctx context.Context, personID, sessionID string) (emailjob.Job, error)
	GetEmailJobByPersonAndOuting(ctx context.Context, personID, outingID string) (emailjob.Job, error)
	ListEmailJobsBySession(ctx context.Context, sessionID string) ([]emailjob.Job, error)
	ListEmailJobsByOuting(ctx context.Context, outingID string) ([]emailjob.Job, error)
	// ConsumeIfNotConsumed atomically sets consumed=true iff it was false,
	// returning ok=false when another writer already consumed it.
	ConsumeIfNotConsumed(ctx context.Context, token string) (job emailjob.Job, ok bool, err error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) (emailjob.Job, error)
}

// CompetencyStore persists the four-tier competency hierarchy.
type CompetencyStore interface {
	CreateStage(ctx context.Context, s competency.Stage) (competency.Stage, error)
	UpdateStage(ctx context.Context, s competency.Stage) (competency.Stage, error)
	GetStage(ctx context.Context, id string) (competency.Stage, error)
	GetStageByCode(ctx context.Context, code string) (competency.Stage, error)
	ListStages(ctx context.Context) ([]competency.Stage, error)
	DeleteStage(ctx context.Context, id string) error // must check StageInUse first

	CreateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error)
	UpdateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error)
	GetDomain(ctx context.Context, id string) (competency.Domain, error)
	ListDomains(ctx context.Context) ([]competency.Domain, error)
	DeleteDomain(ctx context.Context, id string) error // cascades to modules

	CreateModule(ctx context.Context, m competency.Module) (competency.Module, error)
	UpdateModule(ctx context.Context, m competency.Module) (competency.Module, error)
	GetModule(ctx context.Context, id string) (competency.Module, error)
	ListModulesByDomain(ctx context.Context, domainID string) ([]competency.Module, error)
	DeleteModule(ctx context.Context, id string) error // cascades to skills

	CreateSkill(ctx context.Context, s competency.Skill) (competency.Skill, error)
	UpdateSkill(ctx context.Context, s competency.Skill) (competency.Skill, error)
	GetSkill(ctx context.Context, id string) (competency.Skill, error)
	ListSkillsByModule(ctx context.Context, moduleID string) ([]competency.Skill, error)
	DeleteSkill(ctx context.Context, id string) error // cascades to validations

	CountValidationsByStage(ctx context.Context, stageID string) (int, error)

	UpsertValidation(ctx context.Context, v competency.Validation) (competency.Validation, error) // replaces existing (person,skill) row
	GetValidation(ctx context.Context, personID, skillID string) (competency.Validation, error)
	ListValidationsByPerson(ctx context.Context, personID string) ([]competency.Validation, error)
	DeleteValidationsByPerson(ctx context.Context, personID string) error
	DeleteValidationsBySkill(ctx context.Context, skillID string) error
}

// PalanqueeStore persists the rotation/palanquée/member composition tree.
type PalanqueeStore interface {
	CreateRotation(ctx context.Context, r palanquee.Rotation) (palanquee.Rotation, error)
	GetRotation(ctx context.Context, id string) (palanquee.Rotation, error)
	ListRotationsBySession(ctx context.Context, sessionID string) ([]palanquee.Rotation, error)
	MaxRotationNumber(ctx context.Context, sessionID string) (int, error)
	DeleteRotation(ctx context.Context, id string) error // cascades to palanquées

	CreatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error)
	UpdatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error)
	GetPalanquee(ctx context.Context, id string) (palanquee.Palanquee, error)
	ListPalanqueesByRotation(ctx context.Context, rotationID string) ([]palanquee.Palanquee, error)
	MaxPalanqueeNumber(ctx context.Context, rotationID string) (int, error)
	DeletePalanquee(ctx context.Context, id string) error // cascades to members

	AddMember(ctx context.Context, m palanquee.Member) (palanquee.Member, error) // errors on duplicate (palanquee,questionnaire)
	RemoveMember(ctx context.Context, id string) error
	ListMembersByPalanquee(ctx context.Context, palanqueeID string) ([]palanquee.Member, error)
	ListMembersBySession(ctx context.Context, sessionID string) ([]palanquee.Member, error) // every member across all rotations of the session
}

// LevelTemplateStore persists uploaded template PDFs and skill positions.
type LevelTemplateStore interface {
	UpsertTemplate(ctx context.Context, t leveltemplate.Template) (leveltemplate.Template, error) // replaces previous template for the level; skill positions are left as they are
	GetTemplateByLevel(ctx context.Context, level string) (leveltemplate.Template, error)
	ListTemplates(ctx context.Context) ([]leveltemplate.Template, error)

	UpsertSkillPosition(ctx context.Context, p leveltemplate.SkillPosition) (leveltemplate.SkillPosition, error)
	ListSkillPositionsByLevel(ctx context.Context, level string) ([]leveltemplate.SkillPosition, error)
	DeleteSkillPositionsByLevel(ctx context.Context, level string) error
}

// DiveDirectorStore persists the per-session dive-director assignments.
type DiveDirectorStore interface {
	CountDirectors(ctx context.Context, sessionID string) (int, error)
	AddDirector(ctx context.Context, a divedirector.Assignment) (divedirector.Assignment, error)
	ListDirectors(ctx context.Context, sessionID string) ([]divedirector.Assignment, error)
	RemoveDirector(ctx context.Context, sessionID, questionnaireID string) error
}

// Store aggregates every persistence contract this module needs.
type Store interface {
	PersonStore
	GroupStore
	SessionStore
	OutingStore
	QuestionnaireStore
	EmailJobStore
	CompetencyStore
	PalanqueeStore
	LevelTemplateStore
	DiveDirectorStore
}
