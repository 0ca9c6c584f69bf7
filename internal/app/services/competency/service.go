// Package competency manages the four-tier competency hierarchy: domains,
// modules, skills, and the validation stages they progress through.
package competency

import (
	"context"
	"sort"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

// Service manages the competency hierarchy CRUD and referential integrity.
type Service struct {
	store storage.CompetencyStore
	log   *logger.Logger
}

// New constructs a competency hierarchy service.
func New(store storage.CompetencyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("competency")
	}
	return &Service{store: store, log: log}
}

// CreateStage registers a new validation stage.
func (s *Service) CreateStage(ctx context.Context, st competency.Stage) (competency.Stage, error) {
	out, err := s.store.CreateStage(ctx, st)
	if err != nil {
		return competency.Stage{}, err
	}
	s.log.WithField("stage_code", out.Code).Info("validation stage created")
	return out, nil
}

// ListStages returns every stage ordered by sort_order then name then id.
func (s *Service) ListStages(ctx context.Context) ([]competency.Stage, error) {
	stages, err := s.store.ListStages(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(stages, func(i, j int) bool {
		if stages[i].SortOrder != stages[j].SortOrder {
			return stages[i].SortOrder < stages[j].SortOrder
		}
		if stages[i].Name != stages[j].Name {
			return stages[i].Name < stages[j].Name
		}
		return stages[i].ID < stages[j].ID
	})
	return stages, nil
}

// DeleteStage fails with StageInUse if any validation still references it.
func (s *Service) DeleteStage(ctx context.Context, id string) error {
	stage, err := s.store.GetStage(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.store.CountValidationsByStage(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.StageInUse(stage.Code)
	}
	if err := s.store.DeleteStage(ctx, id); err != nil {
		return err
	}
	s.log.WithField("stage_code", stage.Code).Info("validation stage deleted")
	return nil
}

// CreateDomain registers a new competency domain.
func (s *Service) CreateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error) {
	out, err := s.store.CreateDomain(ctx, d)
	if err != nil {
		return competency.Domain{}, err
	}
	s.log.WithField("domain_id", out.ID).Info("competency domain created")
	return out, nil
}

// ListDomains returns every domain ordered by sort_order then name then id.
func (s *Service) ListDomains(ctx context.Context) ([]competency.Domain, error) {
	domains, err := s.store.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].SortOrder != domains[j].SortOrder {
			return domains[i].SortOrder < domains[j].SortOrder
		}
		if domains[i].Name != domains[j].Name {
			return domains[i].Name < domains[j].Name
		}
		return domains[i].ID < domains[j].ID
	})
	return domains, nil
}

// DeleteDomain cascades to its modules, their skills, and those skills'
// validations.
func (s *Service) DeleteDomain(ctx context.Context, id string) error {
	if err := s.store.DeleteDomain(ctx, id); err != nil {
		return err
	}
	s.log.WithField("domain_id", id).Info("competency domain deleted")
	return nil
}

// CreateModule registers a new module under a domain.
func (s *Service) CreateModule(ctx context.Context, m competency.Module) (competency.Module, error) {
	if _, err := s.store.GetDomain(ctx, m.DomainID); err != nil {
		return competency.Module{}, err
	}
	out, err := s.store.CreateModule(ctx, m)
	if err != nil {
		return competency.Module{}, err
	}
	s.log.WithField("module_id", out.ID).WithField("domain_id", m.DomainID).Info("module created")
	return out, nil
}

// ListModulesByDomain returns a domain's modules ordered by sort_order then
// name then id.
func (s *Service) ListModulesByDomain(ctx context.Context, domainID string) ([]competency.Module, error) {
	modules, err := s.store.ListModulesByDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].SortOrder != modules[j].SortOrder {
			return modules[i].SortOrder < modules[j].SortOrder
		}
		if modules[i].Name != modules[j].Name {
			return modules[i].Name < modules[j].Name
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}

// DeleteModule cascades to its skills and their validations.
func (s *Service) DeleteModule(ctx context.Context, id string) error {
	if err := s.store.DeleteModule(ctx, id); err != nil {
		return err
	}
	s.log.WithField("module_id", id).Info("module deleted")
	return nil
}

// CreateSkill registers a new skill under a module, accepting any
// min_validator_level string; rank validation happens only at
// validation-progression time.
func (s *Service) CreateSkill(ctx context.Context, sk competency.Skill) (competency.Skill, error) {
	if _, err := s.store.GetModule(ctx, sk.ModuleID); err != nil {
		return competency.Skill{}, err
	}
	if sk.MinValidatorLevel == "" {
		sk = competency.NewSkill(sk.ModuleID, sk.Name)
	}
	out, err := s.store.CreateSkill(ctx, sk)
	if err != nil {
		return competency.Skill{}, err
	}
	s.log.WithField("skill_id", out.ID).WithField("module_id", sk.ModuleID).Info("skill created")
	return out, nil
}

// ListSkillsByModule returns a module's skills ordered by sort_order then
// name then id.
func (s *Service) ListSkillsByModule(ctx context.Context, moduleID string) ([]competency.Skill, error) {
	skills, err := s.store.ListSkillsByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	sort.Slice(skills, func(i, j int) bool {
		if skills[i].SortOrder != skills[j].SortOrder {
			return skills[i].SortOrder < skills[j].SortOrder
		}
		if skills[i].Name != skills[j].Name {
			return skills[i].Name < skills[j].Name
		}
		return skills[i].ID < skills[j].ID
	})
	return skills, nil
}

// DeleteSkill cascades to its validations.
func (s *Service) DeleteSkill(ctx context.Context, id string) error {
	if err := s.store.DeleteSkill(ctx, id); err != nil {
		return err
	}
	s.log.WithField("skill_id", id).Info("skill deleted")
	return nil
}
