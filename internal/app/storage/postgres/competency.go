package postgres

import (
	"context"

	"github.com/lib/pq"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
)

const stageColumns = `id, code, name, color, icon, sort_order, is_final, created_at, updated_at`

func scanStage(row interface{ Scan(dest ...interface{}) error }) (competency.Stage, error) {
	var st competency.Stage
	err := row.Scan(&st.ID, &st.Code, &st.Name, &st.Color, &st.Icon, &st.SortOrder, &st.IsFinal, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return competency.Stage{}, apperr.Database("scan stage", err)
	}
	return st, nil
}

func (s *Store) CreateStage(ctx context.Context, st competency.Stage) (competency.Stage, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO validation_stages (code, name, color, icon, sort_order, is_final)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING `+stageColumns,
		st.Code, st.Name, st.Color, st.Icon, st.SortOrder, st.IsFinal)
	out, err := scanStage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return competency.Stage{}, apperr.Validation("stage code %s already in use", st.Code)
		}
		return competency.Stage{}, err
	}
	return out, nil
}

func (s *Store) UpdateStage(ctx context.Context, st competency.Stage) (competency.Stage, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE validation_stages SET code=$2, name=$3, color=$4, icon=$5, sort_order=$6, is_final=$7, updated_at=now()
		WHERE id = $1 RETURNING `+stageColumns,
		st.ID, st.Code, st.Name, st.Color, st.Icon, st.SortOrder, st.IsFinal)
	out, err := scanStage(row)
	if err != nil {
		return competency.Stage{}, apperr.NotFound("stage", st.ID)
	}
	return out, nil
}

func (s *Store) GetStage(ctx context.Context, id string) (competency.Stage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM validation_stages WHERE id = $1`, id)
	out, err := scanStage(row)
	if err != nil {
		return competency.Stage{}, apperr.NotFound("stage", id)
	}
	return out, nil
}

func (s *Store) GetStageByCode(ctx context.Context, code string) (competency.Stage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM validation_stages WHERE code = $1`, code)
	out, err := scanStage(row)
	if err != nil {
		return competency.Stage{}, apperr.NotFound("stage", code)
	}
	return out, nil
}

func (s *Store) ListStages(ctx context.Context) ([]competency.Stage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+stageColumns+` FROM validation_stages ORDER BY sort_order`)
	if err != nil {
		return nil, apperr.Database("list stages", err)
	}
	defer rows.Close()

	var out []competency.Stage
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// DeleteStage relies on the ON DELETE RESTRICT foreign key from
// skill_validations.stage_id to surface §7 StageInUse.
func (s *Store) DeleteStage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM validation_stages WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.StageInUse(id)
		}
		return apperr.Database("delete stage", err)
	}
	return mustAffectOne(res, "stage", id)
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code.Name() == "foreign_key_violation"
}

const domainColumns = `id, diving_level, name, sort_order, created_at, updated_at`

func scanDomain(row interface{ Scan(dest ...interface{}) error }) (competency.Domain, error) {
	var d competency.Domain
	if err := row.Scan(&d.ID, &d.DivingLevel, &d.Name, &d.SortOrder, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return competency.Domain{}, apperr.Database("scan domain", err)
	}
	return d, nil
}

func (s *Store) CreateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO domains (diving_level, name, sort_order) VALUES ($1,$2,$3) RETURNING `+domainColumns,
		d.DivingLevel, d.Name, d.SortOrder)
	return scanDomain(row)
}

func (s *Store) UpdateDomain(ctx context.Context, d competency.Domain) (competency.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE domains SET diving_level=$2, name=$3, sort_order=$4, updated_at=now()
		WHERE id = $1 RETURNING `+domainColumns,
		d.ID, d.DivingLevel, d.Name, d.SortOrder)
	out, err := scanDomain(row)
	if err != nil {
		return competency.Domain{}, apperr.NotFound("domain", d.ID)
	}
	return out, nil
}

func (s *Store) GetDomain(ctx context.Context, id string) (competency.Domain, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id)
	out, err := scanDomain(row)
	if err != nil {
		return competency.Domain{}, apperr.NotFound("domain", id)
	}
	return out, nil
}

func (s *Store) ListDomains(ctx context.Context) ([]competency.Domain, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY sort_order`)
	if err != nil {
		return nil, apperr.Database("list domains", err)
	}
	defer rows.Close()

	var out []competency.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDomain relies on ON DELETE CASCADE down through modules, skills,
// and validations.
func (s *Store) DeleteDomain(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete domain", err)
	}
	return mustAffectOne(res, "domain", id)
}

const moduleColumns = `id, domain_id, name, sort_order, created_at, updated_at`

func scanModule(row interface{ Scan(dest ...interface{}) error }) (competency.Module, error) {
	var m competency.Module
	if err := row.Scan(&m.ID, &m.DomainID, &m.Name, &m.SortOrder, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return competency.Module{}, apperr.Database("scan module", err)
	}
	return m, nil
}

func (s *Store) CreateModule(ctx context.Context, m competency.Module) (competency.Module, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO modules (domain_id, name, sort_order) VALUES ($1,$2,$3) RETURNING `+moduleColumns,
		m.DomainID, m.Name, m.SortOrder)
	return scanModule(row)
}

func (s *Store) UpdateModule(ctx context.Context, m competency.Module) (competency.Module, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE modules SET domain_id=$2, name=$3, sort_order=$4, updated_at=now()
		WHERE id = $1 RETURNING `+moduleColumns,
		m.ID, m.DomainID, m.Name, m.SortOrder)
	out, err := scanModule(row)
	if err != nil {
		return competency.Module{}, apperr.NotFound("module", m.ID)
	}
	return out, nil
}

func (s *Store) GetModule(ctx context.Context, id string) (competency.Module, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id)
	out, err := scanModule(row)
	if err != nil {
		return competency.Module{}, apperr.NotFound("module", id)
	}
	return out, nil
}

func (s *Store) ListModulesByDomain(ctx context.Context, domainID string) ([]competency.Module, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE domain_id = $1 ORDER BY sort_order`, domainID)
	if err != nil {
		return nil, apperr.Database("list modules", err)
	}
	defer rows.Close()

	var out []competency.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete module", err)
	}
	return mustAffectOne(res, "module", id)
}

const skillColumns = `id, module_id, name, description, sort_order, min_validator_level, created_at, updated_at`

func scanSkill(row interface{ Scan(dest ...interface{}) error }) (competency.Skill, error) {
	var sk competency.Skill
	err := row.Scan(&sk.ID, &sk.ModuleID, &sk.Name, &sk.Description, &sk.SortOrder, &sk.MinValidatorLevel, &sk.CreatedAt, &sk.UpdatedAt)
	if err != nil {
		return competency.Skill{}, apperr.Database("scan skill", err)
	}
	return sk, nil
}

func (s *Store) CreateSkill(ctx context.Context, sk competency.Skill) (competency.Skill, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO skills (module_id, name, description, sort_order, min_validator_level)
		VALUES ($1,$2,$3,$4,$5) RETURNING `+skillColumns,
		sk.ModuleID, sk.Name, sk.Description, sk.SortOrder, sk.MinValidatorLevel)
	return scanSkill(row)
}

func (s *Store) UpdateSkill(ctx context.Context, sk competency.Skill) (competency.Skill, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE skills SET module_id=$2, name=$3, description=$4, sort_order=$5, min_validator_level=$6, updated_at=now()
		WHERE id = $1 RETURNING `+skillColumns,
		sk.ID, sk.ModuleID, sk.Name, sk.Description, sk.SortOrder, sk.MinValidatorLevel)
	out, err := scanSkill(row)
	if err != nil {
		return competency.Skill{}, apperr.NotFound("skill", sk.ID)
	}
	return out, nil
}

func (s *Store) GetSkill(ctx context.Context, id string) (competency.Skill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1`, id)
	out, err := scanSkill(row)
	if err != nil {
		return competency.Skill{}, apperr.NotFound("skill", id)
	}
	return out, nil
}

func (s *Store) ListSkillsByModule(ctx context.Context, moduleID string) ([]competency.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE module_id = $1 ORDER BY sort_order`, moduleID)
	if err != nil {
		return nil, apperr.Database("list skills", err)
	}
	defer rows.Close()

	var out []competency.Skill
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSkill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete skill", err)
	}
	return mustAffectOne(res, "skill", id)
}

func (s *Store) CountValidationsByStage(ctx context.Context, stageID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM skill_validations WHERE stage_id = $1`, stageID).Scan(&count)
	if err != nil {
		return 0, apperr.Database("count validations by stage", err)
	}
	return count, nil
}

const validationColumns = `id, person_id, skill_id, stage_id, validator_id, validated_at, notes, created_at, updated_at`

func scanValidation(row interface{ Scan(dest ...interface{}) error }) (competency.Validation, error) {
	var v competency.Validation
	err := row.Scan(&v.ID, &v.PersonID, &v.SkillID, &v.StageID, &v.ValidatorID, &v.Date, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return competency.Validation{}, apperr.Database("scan validation", err)
	}
	return v, nil
}

// UpsertValidation replaces the existing (person,skill) row via ON CONFLICT.
func (s *Store) UpsertValidation(ctx context.Context, v competency.Validation) (competency.Validation, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO skill_validations (person_id, skill_id, stage_id, validator_id, validated_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (person_id, skill_id) DO UPDATE SET
			stage_id = EXCLUDED.stage_id, validator_id = EXCLUDED.validator_id,
			validated_at = EXCLUDED.validated_at, notes = EXCLUDED.notes, updated_at = now()
		RETURNING `+validationColumns,
		v.PersonID, v.SkillID, v.StageID, v.ValidatorID, v.Date, v.Notes)
	return scanValidation(row)
}

func (s *Store) GetValidation(ctx context.Context, personID, skillID string) (competency.Validation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+validationColumns+` FROM skill_validations WHERE person_id = $1 AND skill_id = $2`,
		personID, skillID)
	out, err := scanValidation(row)
	if err != nil {
		return competency.Validation{}, apperr.NotFound("validation", personID)
	}
	return out, nil
}

func (s *Store) ListValidationsByPerson(ctx context.Context, personID string) ([]competency.Validation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+validationColumns+` FROM skill_validations WHERE person_id = $1`, personID)
	if err != nil {
		return nil, apperr.Database("list validations", err)
	}
	defer rows.Close()

	var out []competency.Validation
	for rows.Next() {
		v, err := scanValidation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DeleteValidationsByPerson(ctx context.Context, personID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM skill_validations WHERE person_id = $1`, personID)
	if err != nil {
		return apperr.Database("delete validations by person", err)
	}
	return nil
}

func (s *Store) DeleteValidationsBySkill(ctx context.Context, skillID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM skill_validations WHERE skill_id = $1`, skillID)
	if err != nil {
		return apperr.Database("delete validations by skill", err)
	}
	return nil
}
