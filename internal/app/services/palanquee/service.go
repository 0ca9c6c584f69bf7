// Package palanquee builds and edits the session→rotation→palanquée→member
// composition tree and renders the per-session roster view.
package palanquee

import (
	"context"
	"sort"

	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

// Service edits the palanquée tree and assembles roster views.
type Service struct {
	store     storage.PalanqueeStore
	questions storage.QuestionnaireStore
	persons   storage.PersonStore
	log       *logger.Logger
}

// New constructs a palanquée composition service.
func New(store storage.PalanqueeStore, questions storage.QuestionnaireStore, persons storage.PersonStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("palanquee")
	}
	return &Service{store: store, questions: questions, persons: persons, log: log}
}

// CreateRotation auto-numbers r within its session when number is unset (0).
func (s *Service) CreateRotation(ctx context.Context, sessionID string, number int) (palanquee.Rotation, error) {
	if number == 0 {
		max, err := s.store.MaxRotationNumber(ctx, sessionID)
		if err != nil {
			return palanquee.Rotation{}, err
		}
		number = max + 1
	}
	out, err := s.store.CreateRotation(ctx, palanquee.Rotation{SessionID: sessionID, Number: number})
	if err != nil {
		return palanquee.Rotation{}, err
	}
	s.log.WithField("session_id", sessionID).WithField("rotation_number", out.Number).Info("rotation created")
	return out, nil
}

// CreatePalanquee auto-numbers p within its rotation when number is unset (0).
func (s *Service) CreatePalanquee(ctx context.Context, rotationID string, number int, callSign *string) (palanquee.Palanquee, error) {
	if number == 0 {
		max, err := s.store.MaxPalanqueeNumber(ctx, rotationID)
		if err != nil {
			return palanquee.Palanquee{}, err
		}
		number = max + 1
	}
	out, err := s.store.CreatePalanquee(ctx, palanquee.Palanquee{RotationID: rotationID, Number: number, CallSign: callSign})
	if err != nil {
		return palanquee.Palanquee{}, err
	}
	s.log.WithField("rotation_id", rotationID).WithField("palanquee_number", out.Number).Info("palanquee created")
	return out, nil
}

// AddMember assigns a questionnaire into a palanquée, defaulting role from
// is_encadrant and gas from the nitrox preference/training flags when unset.
func (s *Service) AddMember(ctx context.Context, palanqueeID, questionnaireID string, role palanquee.Role, gas palanquee.Gas) (palanquee.Member, error) {
	q, err := s.questions.GetQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return palanquee.Member{}, err
	}
	if role == "" {
		if q.IsEncadrant {
			role = palanquee.RoleInstructor
		} else {
			role = palanquee.RoleDiver
		}
	}
	if gas == "" {
		if q.WantsNitrox || q.AnyNitroxTraining() {
			gas = palanquee.GasNitrox
		} else {
			gas = palanquee.GasAir
		}
	}
	out, err := s.store.AddMember(ctx, palanquee.Member{PalanqueeID: palanqueeID, QuestionnaireID: questionnaireID, Role: role, Gas: gas})
	if err != nil {
		return palanquee.Member{}, err
	}
	s.log.WithField("palanquee_id", palanqueeID).WithField("questionnaire_id", questionnaireID).Info("member assigned")
	return out, nil
}

// RemoveMember detaches a questionnaire from a palanquée.
func (s *Service) RemoveMember(ctx context.Context, id string) error {
	return s.store.RemoveMember(ctx, id)
}

// RotationView nests a rotation's palanquées and their members.
type RotationView struct {
	Rotation   palanquee.Rotation
	Palanquees []PalanqueeView
}

// PalanqueeView nests a palanquée's members, ordered by role priority then
// last name.
type PalanqueeView struct {
	Palanquee palanquee.Palanquee
	Members   []MemberView
}

// MemberView joins a member assignment with the person it was drawn from.
type MemberView struct {
	Member        palanquee.Member
	Questionnaire questionnaire.Questionnaire
	Person        person.Person
}

// SessionView assembles the full rotation/palanquée/member tree for a
// session plus the unassigned-questionnaire list.
type SessionView struct {
	Rotations   []RotationView
	Unassigned  []questionnaire.Questionnaire
}

// SessionView returns every rotation with its palanquées and members for
// sessionID, plus questionnaires for the session assigned to no palanquée
// member in any rotation.
func (s *Service) SessionView(ctx context.Context, sessionID string) (SessionView, error) {
	rotations, err := s.store.ListRotationsBySession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sort.Slice(rotations, func(i, j int) bool { return rotations[i].Number < rotations[j].Number })

	questionnaires, err := s.questions.ListQuestionnairesBySession(ctx, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	questionnaireByID := make(map[string]questionnaire.Questionnaire, len(questionnaires))
	for _, q := range questionnaires {
		questionnaireByID[q.ID] = q
	}

	people, err := s.personsByQuestionnaires(ctx, questionnaires)
	if err != nil {
		return SessionView{}, err
	}

	var view SessionView
	assigned := make(map[string]bool)

	for _, r := range rotations {
		palanquees, err := s.store.ListPalanqueesByRotation(ctx, r.ID)
		if err != nil {
			return SessionView{}, err
		}
		sort.Slice(palanquees, func(i, j int) bool { return palanquees[i].Number < palanquees[j].Number })

		rv := RotationView{Rotation: r}
		for _, p := range palanquees {
			members, err := s.store.ListMembersByPalanquee(ctx, p.ID)
			if err != nil {
				return SessionView{}, err
			}
			pv := PalanqueeView{Palanquee: p}
			for _, m := range members {
				assigned[m.QuestionnaireID] = true
				q := questionnaireByID[m.QuestionnaireID]
				pv.Members = append(pv.Members, MemberView{
					Member:        m,
					Questionnaire: q,
					Person:        people[q.PersonID],
				})
			}
			sortMembers(pv.Members)
			rv.Palanquees = append(rv.Palanquees, pv)
		}
		view.Rotations = append(view.Rotations, rv)
	}

	for _, q := range questionnaires {
		if !assigned[q.ID] {
			view.Unassigned = append(view.Unassigned, q)
		}
	}
	sortUnassigned(view.Unassigned, people)

	return view, nil
}

func (s *Service) personsByQuestionnaires(ctx context.Context, questionnaires []questionnaire.Questionnaire) (map[string]person.Person, error) {
	out := make(map[string]person.Person, len(questionnaires))
	for _, q := range questionnaires {
		if _, ok := out[q.PersonID]; ok {
			continue
		}
		p, err := s.persons.GetPerson(ctx, q.PersonID)
		if err != nil {
			return nil, err
		}
		out[q.PersonID] = p
	}
	return out, nil
}

func sortMembers(members []MemberView) {
	sort.Slice(members, func(i, j int) bool {
		pi, pj := palanquee.RolePriority(members[i].Member.Role), palanquee.RolePriority(members[j].Member.Role)
		if pi != pj {
			return pi < pj
		}
		return members[i].Person.LastName < members[j].Person.LastName
	})
}

// sortUnassigned orders by instructor status descending, then last name,
// then first name.
func sortUnassigned(questionnaires []questionnaire.Questionnaire, people map[string]person.Person) {
	sort.Slice(questionnaires, func(i, j int) bool {
		qi, qj := questionnaires[i], questionnaires[j]
		if qi.IsEncadrant != qj.IsEncadrant {
			return qi.IsEncadrant
		}
		pi, pj := people[qi.PersonID], people[qj.PersonID]
		if pi.LastName != pj.LastName {
			return pi.LastName < pj.LastName
		}
		return pi.FirstName < pj.FirstName
	})
}

// DeleteRotation removes a rotation and cascades to its palanquées and
// their members.
func (s *Service) DeleteRotation(ctx context.Context, id string) error {
	if err := s.store.DeleteRotation(ctx, id); err != nil {
		return err
	}
	s.log.WithField("rotation_id", id).Info("rotation deleted")
	return nil
}

// DeletePalanquee removes a palanquée and cascades to its members.
func (s *Service) DeletePalanquee(ctx context.Context, id string) error {
	if err := s.store.DeletePalanquee(ctx, id); err != nil {
		return err
	}
	s.log.WithField("palanquee_id", id).Info("palanquee deleted")
	return nil
}
