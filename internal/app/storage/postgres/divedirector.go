package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/divedirector"
)

const directorColumns = `id, session_id, questionnaire_id, created_at`

func scanDirector(row interface{ Scan(dest ...interface{}) error }) (divedirector.Assignment, error) {
	var a divedirector.Assignment
	if err := row.Scan(&a.ID, &a.SessionID, &a.QuestionnaireID, &a.CreatedAt); err != nil {
		return divedirector.Assignment{}, apperr.Database("scan dive director assignment", err)
	}
	return a, nil
}

func (s *Store) CountDirectors(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM dive_director_assignments WHERE session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, apperr.Database("count dive directors", err)
	}
	return count, nil
}

// AddDirector does not itself enforce the four-per-session cap; callers
// check CountDirectors first so the apperr.TooManyDirectors error carries
// service-level context.
func (s *Store) AddDirector(ctx context.Context, a divedirector.Assignment) (divedirector.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO dive_director_assignments (session_id, questionnaire_id)
		VALUES ($1,$2) RETURNING `+directorColumns,
		a.SessionID, a.QuestionnaireID)
	out, err := scanDirector(row)
	if err != nil {
		if isUniqueViolation(err) {
			return divedirector.Assignment{}, apperr.Validation("questionnaire %s is already a dive director for this session", a.QuestionnaireID)
		}
		return divedirector.Assignment{}, err
	}
	return out, nil
}

func (s *Store) ListDirectors(ctx context.Context, sessionID string) ([]divedirector.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+directorColumns+` FROM dive_director_assignments WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, apperr.Database("list dive directors", err)
	}
	defer rows.Close()

	var out []divedirector.Assignment
	for rows.Next() {
		a, err := scanDirector(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) RemoveDirector(ctx context.Context, sessionID, questionnaireID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dive_director_assignments WHERE session_id = $1 AND questionnaire_id = $2`,
		sessionID, questionnaireID)
	if err != nil {
		return apperr.Database("remove dive director", err)
	}
	return mustAffectOne(res, "dive director assignment", questionnaireID)
}
