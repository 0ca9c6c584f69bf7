// Package linkledger issues and resolves the one-shot per-recipient
// invitation links that gate questionnaire submission.
package linkledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/emailjob"
	"github.com/divingclub/opscore/internal/app/domain/outing"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/metrics"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

const defaultBodyTemplate = `Bonjour {{PERSON_NAME}},

Merci de renseigner le questionnaire pour "{{SESSION_NAME}}" du {{SESSION_START_DATE}} a {{SESSION_LOCATION}}.

{{MAGIC_LINK}}

Ce lien expire le {{EXPIRATION_DATE}}.
`

// Target carries the session-or-outing reference a link resolves against.
type Target struct {
	SessionID *string
	OutingID  *string

	Name          string
	StartDate     time.Time
	Location      string
	ReferenceDate time.Time
}

// Service issues, resolves, and consumes one-shot invitation links.
type Service struct {
	store   storage.EmailJobStore
	baseURL string
	log     *logger.Logger
}

// New constructs a one-shot link ledger service. baseURL is the configured
// magic_link.base_url the invitation path is appended to.
func New(store storage.EmailJobStore, baseURL string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("linkledger")
	}
	return &Service{store: store, baseURL: baseURL, log: log}
}

// Issue mints a token for (person, target), computing expiry as
// target.ReferenceDate + 1 day at end-of-day, and composes the invitation.
func (s *Service) Issue(ctx context.Context, p person.Person, t Target) (emailjob.Job, error) {
	token := uuid.NewString()
	expiresAt := endOfDay(t.ReferenceDate.AddDate(0, 0, 1))

	subject, body := s.compose(p, t, token, expiresAt)

	job := emailjob.Job{
		Token:     token,
		PersonID:  p.ID,
		SessionID: t.SessionID,
		OutingID:  t.OutingID,
		Status:    emailjob.StatusGenerated,
		ExpiresAt: expiresAt,
		Subject:   subject,
		Body:      body,
	}
	out, err := s.store.CreateEmailJob(ctx, job)
	if err != nil {
		return emailjob.Job{}, err
	}
	metrics.RecordLinkIssued(targetKind(t))
	s.log.WithField("person_id", p.ID).WithField("token", out.Token).Info("invitation link issued")
	return out, nil
}

// targetKind reports whether t resolves against a session or an outing, for
// metrics labelling.
func targetKind(t Target) string {
	if t.OutingID != nil {
		return "outing"
	}
	return "session"
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

func (s *Service) compose(p person.Person, t Target, token string, expiresAt time.Time) (subject, body string) {
	magicLink := strings.TrimRight(s.baseURL, "/") + "/q/" + token
	subject = fmt.Sprintf("Questionnaire - %s - %s", t.Name, p.FullName())

	replacer := strings.NewReplacer(
		"{{PERSON_NAME}}", p.FullName(),
		"{{SESSION_NAME}}", t.Name,
		"{{SESSION_START_DATE}}", t.StartDate.Format("02/01/2006"),
		"{{SESSION_LOCATION}}", t.Location,
		"{{MAGIC_LINK}}", magicLink,
		"{{EXPIRATION_DATE}}", expiresAt.Format("02/01/2006 15:04"),
	)
	body = replacer.Replace(defaultBodyTemplate)
	return subject, body
}

// Resolve returns the job for token if it has neither expired nor been
// consumed, distinguishing Expired from Consumed.
func (s *Service) Resolve(ctx context.Context, token string) (emailjob.Job, error) {
	job, err := s.store.GetEmailJobByToken(ctx, token)
	if err != nil {
		return emailjob.Job{}, err
	}
	if job.Consumed {
		return emailjob.Job{}, apperr.Consumed(token)
	}
	if time.Now().After(job.ExpiresAt) {
		return emailjob.Job{}, apperr.Expired(token)
	}
	return job, nil
}

// Consume atomically marks the token consumed; exactly one concurrent caller
// succeeds, the rest observe Consumed (or Expired, checked first).
func (s *Service) Consume(ctx context.Context, token string) (emailjob.Job, error) {
	job, err := s.store.GetEmailJobByToken(ctx, token)
	if err != nil {
		return emailjob.Job{}, err
	}
	if time.Now().After(job.ExpiresAt) {
		metrics.RecordLinkConsumed("expired")
		return emailjob.Job{}, apperr.Expired(token)
	}

	out, ok, err := s.store.ConsumeIfNotConsumed(ctx, token)
	if err != nil {
		return emailjob.Job{}, err
	}
	if !ok {
		metrics.RecordLinkConsumed("already_consumed")
		return emailjob.Job{}, apperr.Consumed(token)
	}
	metrics.RecordLinkConsumed("ok")
	s.log.WithField("token", token).Info("invitation link consumed")
	return out, nil
}

// MarkSent records that an external agent transmitted the invitation.
func (s *Service) MarkSent(ctx context.Context, id string) (emailjob.Job, error) {
	out, err := s.store.MarkSent(ctx, id, time.Now())
	if err != nil {
		return emailjob.Job{}, err
	}
	s.log.WithField("email_job_id", id).Info("invitation marked sent")
	return out, nil
}

// BulkIssue issues a token for every person with a submitted-or-not
// questionnaire under target lacking one; existing tokens are preserved.
func (s *Service) BulkIssue(ctx context.Context, target Target, questionnaires []questionnaire.Questionnaire, people map[string]person.Person) ([]emailjob.Job, error) {
	var existing []emailjob.Job
	var err error
	if target.SessionID != nil {
		existing, err = s.store.ListEmailJobsBySession(ctx, *target.SessionID)
	} else if target.OutingID != nil {
		existing, err = s.store.ListEmailJobsByOuting(ctx, *target.OutingID)
	}
	if err != nil {
		return nil, err
	}
	issued := make(map[string]bool, len(existing))
	for _, j := range existing {
		issued[j.PersonID] = true
	}

	var out []emailjob.Job
	for _, q := range questionnaires {
		if issued[q.PersonID] {
			continue
		}
		p, ok := people[q.PersonID]
		if !ok {
			continue
		}
		job, err := s.Issue(ctx, p, target)
		if err != nil {
			return out, err
		}
		out = append(out, job)
	}
	return out, nil
}

// SessionTarget and OutingTarget adapt the domain models to Target; kept
// here so callers in the outing/session service layer never construct
// Target fields by hand.
func SessionTarget(sess session.Session) Target {
	id := sess.ID
	return Target{
		SessionID:     &id,
		Name:          sess.Name,
		StartDate:     sess.StartDate,
		Location:      sess.Location,
		ReferenceDate: sess.ReferenceDate(),
	}
}

func OutingTarget(o outing.Outing) Target {
	id := o.ID
	return Target{
		OutingID:      &id,
		Name:          o.Name,
		StartDate:     o.StartDate,
		Location:      o.Location,
		ReferenceDate: o.ReferenceDate(),
	}
}
