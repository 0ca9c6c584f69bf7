package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/session"
)

const sessionColumns = `id, name, start_date, end_date, location, description, summary_token,
	optimization_mode, outing_id, dive_number, created_at, updated_at`

func scanSession(row interface{ Scan(dest ...interface{}) error }) (session.Session, error) {
	var sess session.Session
	err := row.Scan(
		&sess.ID, &sess.Name, &sess.StartDate, &sess.EndDate, &sess.Location, &sess.Description,
		&sess.SummaryToken, &sess.OptimizationMode, &sess.OutingID, &sess.DiveNumber,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return session.Session{}, apperr.Database("scan session", err)
	}
	return sess, nil
}

func (s *Store) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (name, start_date, end_date, location, description, summary_token,
			optimization_mode, outing_id, dive_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+sessionColumns,
		sess.Name, sess.StartDate, sess.EndDate, sess.Location, sess.Description, sess.SummaryToken,
		sess.OptimizationMode, sess.OutingID, sess.DiveNumber,
	)
	return scanSession(row)
}

func (s *Store) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE sessions SET
			name = $2, start_date = $3, end_date = $4, location = $5, description = $6,
			summary_token = $7, optimization_mode = $8, outing_id = $9, dive_number = $10, updated_at = now()
		WHERE id = $1
		RETURNING `+sessionColumns,
		sess.ID, sess.Name, sess.StartDate, sess.EndDate, sess.Location, sess.Description,
		sess.SummaryToken, sess.OptimizationMode, sess.OutingID, sess.DiveNumber,
	)
	out, err := scanSession(row)
	if err != nil {
		return session.Session{}, apperr.NotFound("session", sess.ID)
	}
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (session.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	out, err := scanSession(row)
	if err != nil {
		return session.Session{}, apperr.NotFound("session", id)
	}
	return out, nil
}

func (s *Store) GetSessionBySummaryToken(ctx context.Context, token string) (session.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE summary_token = $1`, token)
	out, err := scanSession(row)
	if err != nil {
		return session.Session{}, apperr.NotFound("session", token)
	}
	return out, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY start_date`)
	if err != nil {
		return nil, apperr.Database("list sessions", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *Store) ListSessionsByOuting(ctx context.Context, outingID string) ([]session.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE outing_id = $1 ORDER BY dive_number`, outingID)
	if err != nil {
		return nil, apperr.Database("list sessions by outing", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession relies on ON DELETE CASCADE foreign keys for questionnaires,
// email jobs, rotations/palanquées/members, and dive director assignments.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete session", err)
	}
	return mustAffectOne(res, "session", id)
}
