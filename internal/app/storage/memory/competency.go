package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
)

func (s *Store) CreateStage(ctx context.Context, st competency.Stage) (competency.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.stages {
		if existing.Code == st.Code {
			return competency.Stage{}, apperr.Validation("stage code %s already in use", st.Code)
		}
	}
	if st.ID == "" {
		st.ID = newID()
	}
	s.stages[st.ID] = st
	return st, nil
}

func (s *Store) UpdateStage(ctx context.Context, st competency.Stage) (competency.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stages[st.ID]; !ok {
		return competency.Stage{}, apperr.NotFound("stage", st.ID)
	}
	s.stages[st.ID] = st
	return st, nil
}

func (s *Store) GetStage(ctx context.Context, id string) (competency.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stages[id]
	if !ok {
		return competency.Stage{}, apperr.NotFound("stage", id)
	}
	return st, nil
}

func (s *Store) GetStageByCode(ctx context.Context, code string) (competency.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.stages {
		if st.Code == code {
			return st, nil
		}
	}
	return competency.Stage{}, apperr.NotFound("stage", code)
}

func (s *Store) ListStages(ctx context.Context) ([]competency.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]competency.Stage, 0, len(s.stages))
	for _, st := range s.stages {
		out = append(out, st)
	}
	return out, nil
}

// DeleteStage refuses to delete a stage still referenced by a validation,
// per §7 StageInUse.
func (s *Store) DeleteStage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stages[id]; !ok {
		return apperr.NotFound("stage", id)
	}
	for _, v := range s.validations {
		if v.StageID == id {
			return apperr.StageInUse(id)
		}
	}
	delete(s.stages, id)
	return nil
}

func (s *Store) CreateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = newID()
	}
	s.domains[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[d.ID]; !ok {
		return competency.Domain{}, apperr.NotFound("domain", d.ID)
	}
	s.domains[d.ID] = d
	return d, nil
}

func (s *Store) GetDomain(ctx context.Context, id string) (competency.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	if !ok {
		return competency.Domain{}, apperr.NotFound("domain", id)
	}
	return d, nil
}

func (s *Store) ListDomains(ctx context.Context) ([]competency.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]competency.Domain, 0, len(s.domains))
	for _, d := range s.domains {
		out = append(out, d)
	}
	return out, nil
}

// DeleteDomain cascades to its modules, which cascades to their skills and
// validations.
func (s *Store) DeleteDomain(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[id]; !ok {
		return apperr.NotFound("domain", id)
	}
	delete(s.domains, id)

	for mid, m := range s.modules {
		if m.DomainID != id {
			continue
		}
		s.deleteModuleLocked(mid)
	}
	return nil
}

func (s *Store) CreateModule(ctx context.Context, m competency.Module) (competency.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = newID()
	}
	s.modules[m.ID] = m
	return m, nil
}

func (s *Store) UpdateModule(ctx context.Context, m competency.Module) (competency.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.modules[m.ID]; !ok {
		return competency.Module{}, apperr.NotFound("module", m.ID)
	}
	s.modules[m.ID] = m
	return m, nil
}

func (s *Store) GetModule(ctx context.Context, id string) (competency.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.modules[id]
	if !ok {
		return competency.Module{}, apperr.NotFound("module", id)
	}
	return m, nil
}

func (s *Store) ListModulesByDomain(ctx context.Context, domainID string) ([]competency.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []competency.Module
	for _, m := range s.modules {
		if m.DomainID == domainID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) DeleteModule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.modules[id]; !ok {
		return apperr.NotFound("module", id)
	}
	s.deleteModuleLocked(id)
	return nil
}

// deleteModuleLocked removes a module and cascades to its skills; caller
// must hold s.mu.
func (s *Store) deleteModuleLocked(id string) {
	delete(s.modules, id)
	for sid, sk := range s.skills {
		if sk.ModuleID != id {
			continue
		}
		s.deleteSkillLocked(sid)
	}
}

func (s *Store) CreateSkill(ctx context.Context, sk competency.Skill) (competency.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sk.ID == "" {
		sk.ID = newID()
	}
	s.skills[sk.ID] = sk
	return sk, nil
}

func (s *Store) UpdateSkill(ctx context.Context, sk competency.Skill) (competency.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skills[sk.ID]; !ok {
		return competency.Skill{}, apperr.NotFound("skill", sk.ID)
	}
	s.skills[sk.ID] = sk
	return sk, nil
}

func (s *Store) GetSkill(ctx context.Context, id string) (competency.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.skills[id]
	if !ok {
		return competency.Skill{}, apperr.NotFound("skill", id)
	}
	return sk, nil
}

func (s *Store) ListSkillsByModule(ctx context.Context, moduleID string) ([]competency.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []competency.Skill
	for _, sk := range s.skills {
		if sk.ModuleID == moduleID {
			out = append(out, sk)
		}
	}
	return out, nil
}

func (s *Store) DeleteSkill(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.skills[id]; !ok {
		return apperr.NotFound("skill", id)
	}
	s.deleteSkillLocked(id)
	return nil
}

// deleteSkillLocked removes a skill and cascades to its validations; caller
// must hold s.mu.
func (s *Store) deleteSkillLocked(id string) {
	delete(s.skills, id)
	for vid, v := range s.validations {
		if v.SkillID == id {
			delete(s.validations, vid)
		}
	}
}

func (s *Store) CountValidationsByStage(ctx context.Context, stageID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, v := range s.validations {
		if v.StageID == stageID {
			count++
		}
	}
	return count, nil
}

// UpsertValidation replaces the existing (person,skill) row, if any.
func (s *Store) UpsertValidation(ctx context.Context, v competency.Validation) (competency.Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.validations {
		if existing.PersonID == v.PersonID && existing.SkillID == v.SkillID {
			v.ID = id
			s.validations[id] = v
			return v, nil
		}
	}
	if v.ID == "" {
		v.ID = newID()
	}
	s.validations[v.ID] = v
	return v, nil
}

func (s *Store) GetValidation(ctx context.Context, personID, skillID string) (competency.Validation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.validations {
		if v.PersonID == personID && v.SkillID == skillID {
			return v, nil
		}
	}
	return competency.Validation{}, apperr.NotFound("validation", personID)
}

func (s *Store) ListValidationsByPerson(ctx context.Context, personID string) ([]competency.Validation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []competency.Validation
	for _, v := range s.validations {
		if v.PersonID == personID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) DeleteValidationsByPerson(ctx context.Context, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range s.validations {
		if v.PersonID == personID {
			delete(s.validations, id)
		}
	}
	return nil
}

func (s *Store) DeleteValidationsBySkill(ctx context.Context, skillID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, v := range s.validations {
		if v.SkillID == skillID {
			delete(s.validations, id)
		}
	}
	return nil
}
