package postgres

import (
	"context"

	"github.com/lib/pq"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
)

const questionnaireColumns = `id, person_id, session_id, outing_id, is_encadrant,
	wants_regulator, wants_nitrox, wants_second_regulator, wants_stab, stab_size,
	nitrox_base_training, nitrox_confirmed_training, nitrox_legacy_training,
	has_car, car_seats, comes_from_issoire, is_directeur_plongee, comments, submitted_at,
	created_at, updated_at`

func scanQuestionnaire(row interface{ Scan(dest ...interface{}) error }) (questionnaire.Questionnaire, error) {
	var q questionnaire.Questionnaire
	err := row.Scan(
		&q.ID, &q.PersonID, &q.SessionID, &q.OutingID, &q.IsEncadrant,
		&q.WantsRegulator, &q.WantsNitrox, &q.WantsSecondReg, &q.WantsStab, &q.StabSize,
		&q.NitroxTrainingBase, &q.NitroxConfirmed, &q.NitroxLegacy,
		&q.HasCar, &q.CarSeats, &q.ComesFromIssoire, &q.IsDirecteurPlongee, &q.Comments, &q.SubmittedAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return questionnaire.Questionnaire{}, apperr.Database("scan questionnaire", err)
	}
	return q, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code.Name() == "unique_violation"
}

func (s *Store) CreateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO questionnaires (person_id, session_id, outing_id, is_encadrant,
			wants_regulator, wants_nitrox, wants_second_regulator, wants_stab, stab_size,
			nitrox_base_training, nitrox_confirmed_training, nitrox_legacy_training,
			has_car, car_seats, comes_from_issoire, is_directeur_plongee, comments, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+questionnaireColumns,
		q.PersonID, q.SessionID, q.OutingID, q.IsEncadrant,
		q.WantsRegulator, q.WantsNitrox, q.WantsSecondReg, q.WantsStab, q.StabSize,
		q.NitroxTrainingBase, q.NitroxConfirmed, q.NitroxLegacy,
		q.HasCar, q.CarSeats, q.ComesFromIssoire, q.IsDirecteurPlongee, q.Comments, q.SubmittedAt,
	)
	out, err := scanQuestionnaire(row)
	if err != nil {
		if isUniqueViolation(err) {
			return questionnaire.Questionnaire{}, apperr.Validation("a questionnaire already exists for this person and target")
		}
		return questionnaire.Questionnaire{}, err
	}
	return out, nil
}

func (s *Store) UpdateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE questionnaires SET
			is_encadrant = $2,
			wants_regulator = $3, wants_nitrox = $4, wants_second_regulator = $5, wants_stab = $6, stab_size = $7,
			nitrox_base_training = $8, nitrox_confirmed_training = $9, nitrox_legacy_training = $10,
			has_car = $11, car_seats = $12, comes_from_issoire = $13, is_directeur_plongee = $14,
			comments = $15, submitted_at = $16, updated_at = now()
		WHERE id = $1
		RETURNING `+questionnaireColumns,
		q.ID, q.IsEncadrant,
		q.WantsRegulator, q.WantsNitrox, q.WantsSecondReg, q.WantsStab, q.StabSize,
		q.NitroxTrainingBase, q.NitroxConfirmed, q.NitroxLegacy,
		q.HasCar, q.CarSeats, q.ComesFromIssoire, q.IsDirecteurPlongee, q.Comments, q.SubmittedAt,
	)
	out, err := scanQuestionnaire(row)
	if err != nil {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", q.ID)
	}
	return out, nil
}

func (s *Store) GetQuestionnaire(ctx context.Context, id string) (questionnaire.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionnaireColumns+` FROM questionnaires WHERE id = $1`, id)
	out, err := scanQuestionnaire(row)
	if err != nil {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", id)
	}
	return out, nil
}

func (s *Store) GetQuestionnaireBySession(ctx context.Context, sessionID, personID string) (questionnaire.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaires WHERE session_id = $1 AND person_id = $2`,
		sessionID, personID)
	out, err := scanQuestionnaire(row)
	if err != nil {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", personID)
	}
	return out, nil
}

func (s *Store) GetQuestionnaireByOuting(ctx context.Context, outingID, personID string) (questionnaire.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionnaireColumns+` FROM questionnaires WHERE outing_id = $1 AND person_id = $2`,
		outingID, personID)
	out, err := scanQuestionnaire(row)
	if err != nil {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", personID)
	}
	return out, nil
}

func (s *Store) ListQuestionnairesBySession(ctx context.Context, sessionID string) ([]questionnaire.Questionnaire, error) {
	return s.listQuestionnaires(ctx, `session_id = $1`, sessionID)
}

func (s *Store) ListQuestionnairesByOuting(ctx context.Context, outingID string) ([]questionnaire.Questionnaire, error) {
	return s.listQuestionnaires(ctx, `outing_id = $1`, outingID)
}

func (s *Store) listQuestionnaires(ctx context.Context, where, arg string) ([]questionnaire.Questionnaire, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+questionnaireColumns+` FROM questionnaires WHERE `+where, arg)
	if err != nil {
		return nil, apperr.Database("list questionnaires", err)
	}
	defer rows.Close()

	var out []questionnaire.Questionnaire
	for rows.Next() {
		q, err := scanQuestionnaire(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) DeleteQuestionnaire(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete questionnaire", err)
	}
	return mustAffectOne(res, "questionnaire", id)
}
