// Package validation advances a person's skill through the ordered
// validation stages, enforcing the validator-level gate, and aggregates
// per-person progression statistics.
package validation

import (
	"context"
	"sort"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/qualification"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

// Service advances and aggregates skill validations.
type Service struct {
	store storage.CompetencyStore
	log   *logger.Logger
}

// New constructs a validation progression service.
func New(store storage.CompetencyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("validation")
	}
	return &Service{store: store, log: log}
}

func divingLevel(p person.Person) string {
	if p.DivingLevel == nil {
		return ""
	}
	return *p.DivingLevel
}

// RecordValidation replaces the single progression row for (subject, skill)
// after checking, in order: the stage exists, the validator is not the
// subject, and the validator's rank meets the skill's minimum.
func (s *Service) RecordValidation(ctx context.Context, subject, validator person.Person, skillID, stageID string, date time.Time, notes *string) (competency.Validation, error) {
	stage, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		return competency.Validation{}, err
	}
	if validator.ID == subject.ID {
		return competency.Validation{}, apperr.Validation("validator cannot validate their own skill")
	}

	skill, err := s.store.GetSkill(ctx, skillID)
	if err != nil {
		return competency.Validation{}, err
	}

	validatorView := qualification.Parse(divingLevel(validator))
	var validatorRank int
	if validatorView.HighestTerminal != nil {
		validatorRank = qualification.Rank(*validatorView.HighestTerminal)
	}
	requiredRank := qualification.Rank(qualification.Token(skill.MinValidatorLevel))
	if validatorRank < requiredRank {
		return competency.Validation{}, apperr.InsufficientValidatorLevel(validatorView.Display, skill.MinValidatorLevel)
	}

	v := competency.Validation{
		PersonID:    subject.ID,
		SkillID:     skillID,
		StageID:     stage.ID,
		ValidatorID: validator.ID,
		Date:        date,
		Notes:       notes,
	}
	out, err := s.store.UpsertValidation(ctx, v)
	if err != nil {
		return competency.Validation{}, err
	}
	s.log.WithField("person_id", subject.ID).
		WithField("skill_id", skillID).
		WithField("stage_code", stage.Code).
		Info("skill validation recorded")
	return out, nil
}

// DomainProgress is the percentage of a domain's skills with at least one
// recorded validation, alongside its modules' per-stage counts.
type DomainProgress struct {
	Domain     competency.Domain
	Percentage float64
	Modules    []ModuleProgress
}

// ModuleProgress counts validations per stage id within a module.
type ModuleProgress struct {
	Module         competency.Module
	StageCounts    map[string]int
	DominantStages map[string]string // skill id -> dominant stage id
}

// ProgressOf builds the progress tree for every domain accessible at the
// person's declared level. Progression never silently stalls: moving
// backward in stage order is allowed by design.
func (s *Service) ProgressOf(ctx context.Context, p person.Person) ([]DomainProgress, error) {
	level := qualification.Parse(divingLevel(p))

	domains, err := s.store.ListDomains(ctx)
	if err != nil {
		return nil, err
	}

	stages, err := s.store.ListStages(ctx)
	if err != nil {
		return nil, err
	}
	stageOrder := make(map[string]int, len(stages))
	for _, st := range stages {
		stageOrder[st.ID] = st.SortOrder
	}

	validations, err := s.store.ListValidationsByPerson(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	validationBySkill := make(map[string]competency.Validation, len(validations))
	for _, v := range validations {
		validationBySkill[v.SkillID] = v
	}

	var out []DomainProgress
	for _, d := range domains {
		if !accessibleDomain(d, level) {
			continue
		}

		modules, err := s.store.ListModulesByDomain(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		sort.Slice(modules, func(i, j int) bool { return modules[i].SortOrder < modules[j].SortOrder })

		var totalSkills, validatedSkills int
		var moduleProgress []ModuleProgress
		for _, m := range modules {
			skills, err := s.store.ListSkillsByModule(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			mp := ModuleProgress{
				Module:         m,
				StageCounts:    map[string]int{},
				DominantStages: map[string]string{},
			}
			for _, sk := range skills {
				totalSkills++
				v, ok := validationBySkill[sk.ID]
				if !ok {
					continue
				}
				validatedSkills++
				mp.StageCounts[v.StageID]++
				mp.DominantStages[sk.ID] = v.StageID
			}
			moduleProgress = append(moduleProgress, mp)
		}

		pct := 0.0
		if totalSkills > 0 {
			pct = 100 * float64(validatedSkills) / float64(totalSkills)
		}
		out = append(out, DomainProgress{Domain: d, Percentage: pct, Modules: moduleProgress})
	}
	return out, nil
}

// accessibleDomain reports whether a domain's diving-level tag is reachable
// given the person's validated or in-preparation qualifications.
func accessibleDomain(d competency.Domain, level qualification.View) bool {
	if d.DivingLevel == "" {
		return true
	}
	for _, t := range level.Validated {
		if string(t) == d.DivingLevel {
			return true
		}
	}
	if level.Preparing != nil && string(*level.Preparing) == d.DivingLevel {
		return true
	}
	return false
}
