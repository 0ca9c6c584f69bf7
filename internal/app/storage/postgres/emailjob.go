package postgres

import (
	"context"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/emailjob"
)

const emailJobColumns = `id, token, person_id, session_id, outing_id, status, expires_at,
	consumed, retry_count, subject, body, last_error, sent_at, created_at, updated_at`

func scanEmailJob(row interface{ Scan(dest ...interface{}) error }) (emailjob.Job, error) {
	var j emailjob.Job
	err := row.Scan(
		&j.ID, &j.Token, &j.PersonID, &j.SessionID, &j.OutingID, &j.Status, &j.ExpiresAt,
		&j.Consumed, &j.RetryCount, &j.Subject, &j.Body, &j.LastError, &j.SentAt,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return emailjob.Job{}, apperr.Database("scan email job", err)
	}
	return j, nil
}

func (s *Store) CreateEmailJob(ctx context.Context, j emailjob.Job) (emailjob.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO email_jobs (token, person_id, session_id, outing_id, status, expires_at,
			consumed, retry_count, subject, body, last_error, sent_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+emailJobColumns,
		j.Token, j.PersonID, j.SessionID, j.OutingID, j.Status, j.ExpiresAt,
		j.Consumed, j.RetryCount, j.Subject, j.Body, j.LastError, j.SentAt,
	)
	return scanEmailJob(row)
}

func (s *Store) GetEmailJobByToken(ctx context.Context, token string) (emailjob.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+emailJobColumns+` FROM email_jobs WHERE token = $1`, token)
	out, err := scanEmailJob(row)
	if err != nil {
		return emailjob.Job{}, apperr.InvalidToken(token)
	}
	return out, nil
}

func (s *Store) GetEmailJobByPersonAndSession(ctx context.Context, personID, sessionID string) (emailjob.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+emailJobColumns+` FROM email_jobs WHERE person_id = $1 AND session_id = $2`,
		personID, sessionID)
	out, err := scanEmailJob(row)
	if err != nil {
		return emailjob.Job{}, apperr.NotFound("email job", personID)
	}
	return out, nil
}

func (s *Store) GetEmailJobByPersonAndOuting(ctx context.Context, personID, outingID string) (emailjob.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+emailJobColumns+` FROM email_jobs WHERE person_id = $1 AND outing_id = $2`,
		personID, outingID)
	out, err := scanEmailJob(row)
	if err != nil {
		return emailjob.Job{}, apperr.NotFound("email job", personID)
	}
	return out, nil
}

func (s *Store) ListEmailJobsBySession(ctx context.Context, sessionID string) ([]emailjob.Job, error) {
	return s.listEmailJobs(ctx, `session_id = $1`, sessionID)
}

func (s *Store) ListEmailJobsByOuting(ctx context.Context, outingID string) ([]emailjob.Job, error) {
	return s.listEmailJobs(ctx, `outing_id = $1`, outingID)
}

func (s *Store) listEmailJobs(ctx context.Context, where, arg string) ([]emailjob.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+emailJobColumns+` FROM email_jobs WHERE `+where, arg)
	if err != nil {
		return nil, apperr.Database("list email jobs", err)
	}
	defer rows.Close()

	var out []emailjob.Job
	for rows.Next() {
		j, err := scanEmailJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ConsumeIfNotConsumed relies on the single-row UPDATE...RETURNING round
// trip being atomic: a concurrent resolver targeting the same token either
// wins this UPDATE or observes zero rows affected.
func (s *Store) ConsumeIfNotConsumed(ctx context.Context, token string) (emailjob.Job, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE email_jobs SET consumed = true, updated_at = now()
		WHERE token = $1 AND consumed = false
		RETURNING `+emailJobColumns, token)

	out, err := scanEmailJob(row)
	if err == nil {
		return out, true, nil
	}

	existing, getErr := s.GetEmailJobByToken(ctx, token)
	if getErr != nil {
		return emailjob.Job{}, false, getErr
	}
	return existing, false, nil
}

func (s *Store) MarkSent(ctx context.Context, id string, sentAt time.Time) (emailjob.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE email_jobs SET status = $2, sent_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+emailJobColumns, id, emailjob.StatusSent, sentAt)
	out, err := scanEmailJob(row)
	if err != nil {
		return emailjob.Job{}, apperr.NotFound("email job", id)
	}
	return out, nil
}
