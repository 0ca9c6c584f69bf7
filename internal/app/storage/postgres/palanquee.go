package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/palanquee"
)

const rotationColumns = `id, session_id, rotation_number, created_at, updated_at`

func scanRotation(row interface{ Scan(dest ...interface{}) error }) (palanquee.Rotation, error) {
	var r palanquee.Rotation
	if err := row.Scan(&r.ID, &r.SessionID, &r.Number, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return palanquee.Rotation{}, apperr.Database("scan rotation", err)
	}
	return r, nil
}

func (s *Store) CreateRotation(ctx context.Context, r palanquee.Rotation) (palanquee.Rotation, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO rotations (session_id, rotation_number) VALUES ($1,$2) RETURNING `+rotationColumns,
		r.SessionID, r.Number)
	return scanRotation(row)
}

func (s *Store) GetRotation(ctx context.Context, id string) (palanquee.Rotation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rotationColumns+` FROM rotations WHERE id = $1`, id)
	out, err := scanRotation(row)
	if err != nil {
		return palanquee.Rotation{}, apperr.NotFound("rotation", id)
	}
	return out, nil
}

func (s *Store) ListRotationsBySession(ctx context.Context, sessionID string) ([]palanquee.Rotation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rotationColumns+` FROM rotations WHERE session_id = $1 ORDER BY rotation_number`, sessionID)
	if err != nil {
		return nil, apperr.Database("list rotations", err)
	}
	defer rows.Close()

	var out []palanquee.Rotation
	for rows.Next() {
		r, err := scanRotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) MaxRotationNumber(ctx context.Context, sessionID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(max(rotation_number), 0) FROM rotations WHERE session_id = $1`, sessionID).Scan(&max)
	if err != nil {
		return 0, apperr.Database("max rotation number", err)
	}
	return max, nil
}

func (s *Store) DeleteRotation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rotations WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete rotation", err)
	}
	return mustAffectOne(res, "rotation", id)
}

const palanqueeColumns = `id, rotation_id, palanquee_number, call_sign,
	planned_departure, planned_duration_minutes, planned_depth_meters, planned_return,
	actual_departure, actual_duration_minutes, actual_depth_meters, actual_return,
	created_at, updated_at`

func scanPalanquee(row interface{ Scan(dest ...interface{}) error }) (palanquee.Palanquee, error) {
	var p palanquee.Palanquee
	err := row.Scan(
		&p.ID, &p.RotationID, &p.Number, &p.CallSign,
		&p.Planned.Departure, &p.Planned.Duration, &p.Planned.Depth, &p.Planned.Return,
		&p.Actual.Departure, &p.Actual.Duration, &p.Actual.Depth, &p.Actual.Return,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return palanquee.Palanquee{}, apperr.Database("scan palanquee", err)
	}
	return p, nil
}

func (s *Store) CreatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO palanquees (rotation_id, palanquee_number, call_sign,
			planned_departure, planned_duration_minutes, planned_depth_meters, planned_return,
			actual_departure, actual_duration_minutes, actual_depth_meters, actual_return)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING `+palanqueeColumns,
		p.RotationID, p.Number, p.CallSign,
		p.Planned.Departure, p.Planned.Duration, p.Planned.Depth, p.Planned.Return,
		p.Actual.Departure, p.Actual.Duration, p.Actual.Depth, p.Actual.Return,
	)
	return scanPalanquee(row)
}

func (s *Store) UpdatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE palanquees SET call_sign=$2,
			planned_departure=$3, planned_duration_minutes=$4, planned_depth_meters=$5, planned_return=$6,
			actual_departure=$7, actual_duration_minutes=$8, actual_depth_meters=$9, actual_return=$10,
			updated_at = now()
		WHERE id = $1
		RETURNING `+palanqueeColumns,
		p.ID, p.CallSign,
		p.Planned.Departure, p.Planned.Duration, p.Planned.Depth, p.Planned.Return,
		p.Actual.Departure, p.Actual.Duration, p.Actual.Depth, p.Actual.Return,
	)
	out, err := scanPalanquee(row)
	if err != nil {
		return palanquee.Palanquee{}, apperr.NotFound("palanquee", p.ID)
	}
	return out, nil
}

func (s *Store) GetPalanquee(ctx context.Context, id string) (palanquee.Palanquee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+palanqueeColumns+` FROM palanquees WHERE id = $1`, id)
	out, err := scanPalanquee(row)
	if err != nil {
		return palanquee.Palanquee{}, apperr.NotFound("palanquee", id)
	}
	return out, nil
}

func (s *Store) ListPalanqueesByRotation(ctx context.Context, rotationID string) ([]palanquee.Palanquee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+palanqueeColumns+` FROM palanquees WHERE rotation_id = $1 ORDER BY palanquee_number`, rotationID)
	if err != nil {
		return nil, apperr.Database("list palanquees", err)
	}
	defer rows.Close()

	var out []palanquee.Palanquee
	for rows.Next() {
		p, err := scanPalanquee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) MaxPalanqueeNumber(ctx context.Context, rotationID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(max(palanquee_number), 0) FROM palanquees WHERE rotation_id = $1`, rotationID).Scan(&max)
	if err != nil {
		return 0, apperr.Database("max palanquee number", err)
	}
	return max, nil
}

func (s *Store) DeletePalanquee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM palanquees WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete palanquee", err)
	}
	return mustAffectOne(res, "palanquee", id)
}

const memberColumns = `id, palanquee_id, questionnaire_id, role, gas, created_at, updated_at`

func scanMember(row interface{ Scan(dest ...interface{}) error }) (palanquee.Member, error) {
	var m palanquee.Member
	err := row.Scan(&m.ID, &m.PalanqueeID, &m.QuestionnaireID, &m.Role, &m.Gas, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return palanquee.Member{}, apperr.Database("scan palanquee member", err)
	}
	return m, nil
}

func (s *Store) AddMember(ctx context.Context, m palanquee.Member) (palanquee.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO palanquee_members (palanquee_id, questionnaire_id, role, gas)
		VALUES ($1,$2,$3,$4) RETURNING `+memberColumns,
		m.PalanqueeID, m.QuestionnaireID, m.Role, m.Gas)
	out, err := scanMember(row)
	if err != nil {
		if isUniqueViolation(err) {
			return palanquee.Member{}, apperr.Validation("questionnaire %s is already a member of this palanquee", m.QuestionnaireID)
		}
		return palanquee.Member{}, err
	}
	return out, nil
}

func (s *Store) RemoveMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM palanquee_members WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("remove palanquee member", err)
	}
	return mustAffectOne(res, "palanquee member", id)
}

func (s *Store) ListMembersByPalanquee(ctx context.Context, palanqueeID string) ([]palanquee.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM palanquee_members WHERE palanquee_id = $1`, palanqueeID)
	if err != nil {
		return nil, apperr.Database("list palanquee members", err)
	}
	defer rows.Close()

	var out []palanquee.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListMembersBySession(ctx context.Context, sessionID string) ([]palanquee.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pm.id, pm.palanquee_id, pm.questionnaire_id, pm.role, pm.gas, pm.created_at, pm.updated_at
		FROM palanquee_members pm
		JOIN palanquees pl ON pl.id = pm.palanquee_id
		JOIN rotations r ON r.id = pl.rotation_id
		WHERE r.session_id = $1`, sessionID)
	if err != nil {
		return nil, apperr.Database("list palanquee members by session", err)
	}
	defer rows.Close()

	var out []palanquee.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
