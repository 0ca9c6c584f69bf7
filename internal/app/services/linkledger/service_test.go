package linkledger

import (
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func testSession() session.Session {
	return session.Session{
		ID:        "session-1",
		Name:      "Fosse - session du matin",
		StartDate: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Location:  "Issoire",
	}
}

func TestIssueComposesSubjectAndExpiry(t *testing.T) {
	store := memory.New()
	svc := New(store, "https://club.example.org", nil)
	ctx := context.Background()

	p := person.Person{ID: "person-1", FirstName: "Alex", LastName: "Martin"}
	sess := testSession()

	job, err := svc.Issue(ctx, p, SessionTarget(sess))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if job.Subject != "Questionnaire - Fosse - session du matin - Alex Martin" {
		t.Fatalf("unexpected subject: %q", job.Subject)
	}
	wantExpiry := time.Date(2026, 8, 2, 23, 59, 59, 0, time.UTC)
	if !job.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, job.ExpiresAt)
	}
	if job.Token == "" {
		t.Fatalf("expected a non-empty token")
	}
}

// TestConsumeIsSingleUse exercises the token single-use property: the first
// Consume succeeds, every subsequent Consume or Resolve observes Consumed.
func TestConsumeIsSingleUse(t *testing.T) {
	store := memory.New()
	svc := New(store, "https://club.example.org", nil)
	ctx := context.Background()

	p := person.Person{ID: "person-1", FirstName: "Alex", LastName: "Martin"}
	job, err := svc.Issue(ctx, p, SessionTarget(testSession()))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Consume(ctx, job.Token); err != nil {
		t.Fatalf("first consume: %v", err)
	}

	if _, err := svc.Consume(ctx, job.Token); !apperr.Is(err, apperr.CodeConsumed) {
		t.Fatalf("expected Consumed on second consume, got %v", err)
	}
	if _, err := svc.Resolve(ctx, job.Token); !apperr.Is(err, apperr.CodeConsumed) {
		t.Fatalf("expected Consumed on resolve after consumption, got %v", err)
	}
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	store := memory.New()
	svc := New(store, "https://club.example.org", nil)
	ctx := context.Background()

	pastSession := testSession()
	pastSession.StartDate = time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	p := person.Person{ID: "person-1", FirstName: "Alex", LastName: "Martin"}

	job, err := svc.Issue(ctx, p, SessionTarget(pastSession))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(ctx, job.Token); !apperr.Is(err, apperr.CodeInvalidToken) {
		t.Fatalf("expected expired InvalidToken, got %v", err)
	}
}

func TestBulkIssuePreservesExistingTokens(t *testing.T) {
	store := memory.New()
	svc := New(store, "https://club.example.org", nil)
	ctx := context.Background()

	sess := testSession()
	target := SessionTarget(sess)

	alice := person.Person{ID: "person-1", FirstName: "Alice", LastName: "Dupont"}
	bob := person.Person{ID: "person-2", FirstName: "Bob", LastName: "Martin"}
	people := map[string]person.Person{alice.ID: alice, bob.ID: bob}

	existing, err := svc.Issue(ctx, alice, target)
	if err != nil {
		t.Fatalf("seed issue: %v", err)
	}

	sessID := sess.ID
	questionnaires := []questionnaire.Questionnaire{
		{PersonID: alice.ID, SessionID: &sessID},
		{PersonID: bob.ID, SessionID: &sessID},
	}

	issued, err := svc.BulkIssue(ctx, target, questionnaires, people)
	if err != nil {
		t.Fatalf("bulk issue: %v", err)
	}
	if len(issued) != 1 || issued[0].PersonID != bob.ID {
		t.Fatalf("expected exactly one new token for bob, got %+v", issued)
	}

	aliceJob, err := store.GetEmailJobByToken(ctx, existing.Token)
	if err != nil {
		t.Fatalf("lookup alice's original token: %v", err)
	}
	if aliceJob.ID != existing.ID {
		t.Fatalf("expected alice's original job to be preserved")
	}
}
