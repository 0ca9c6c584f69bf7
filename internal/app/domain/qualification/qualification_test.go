package qualification

import "testing"

func TestRankOrdering(t *testing.T) {
	if !(Rank(N1) < Rank(N2) && Rank(N2) < Rank(N3) && Rank(N3) < Rank(N4) && Rank(N4) < Rank(N5)) {
		t.Fatalf("expected N1 < N2 < N3 < N4 < N5 by rank")
	}
	if !(Rank(N5) < Rank(E2) && Rank(E2) < Rank(MF1) && Rank(MF1) < Rank(MF2)) {
		t.Fatalf("expected N5 < E2 < MF1 < MF2 by rank")
	}
	if Rank(PE40) != Rank(PA20) {
		t.Fatalf("PE40 and PA20 should share a rank")
	}
}

func TestParseDropsUnknownTokens(t *testing.T) {
	view := Parse("N1, bogus, N2")
	if len(view.Validated) != 2 {
		t.Fatalf("expected 2 validated tokens, got %v", view.Validated)
	}
	if view.Validated[0] != N1 || view.Validated[1] != N2 {
		t.Fatalf("unexpected validated tokens: %v", view.Validated)
	}
}

func TestParseEmpty(t *testing.T) {
	view := Parse("")
	if view.HighestTerminal != nil {
		t.Fatalf("expected no highest terminal for empty input")
	}
	if view.Display != "Aucun niveau" {
		t.Fatalf("expected display 'Aucun niveau', got %q", view.Display)
	}
	if view.IsInstructor {
		t.Fatalf("expected non-instructor for empty input")
	}
}

func TestIsInstructorThreshold(t *testing.T) {
	cases := map[string]bool{
		"N4":      false,
		"N4,E2":   true,
		"N5":      false,
		"MF1":     true,
		"N3,PA40": false,
	}
	for raw, want := range cases {
		view := Parse(raw)
		if view.IsInstructor != want {
			t.Fatalf("Parse(%q).IsInstructor = %v, want %v", raw, view.IsInstructor, want)
		}
	}
}

func TestExtractPreparing(t *testing.T) {
	view := Parse("N2, preparing_N3")
	if view.Preparing == nil || *view.Preparing != N3 {
		t.Fatalf("expected preparing marker N3, got %v", view.Preparing)
	}
	if len(view.Validated) != 1 || view.Validated[0] != N2 {
		t.Fatalf("preparing marker must not appear in validated tokens: %v", view.Validated)
	}
}

func TestCompetenciesExcludedFromHighestTerminal(t *testing.T) {
	view := Parse("N2,PA40")
	if view.HighestTerminal == nil || *view.HighestTerminal != N2 {
		t.Fatalf("expected highest terminal N2 (competency excluded), got %v", view.HighestTerminal)
	}
}

func TestToDBStringRoundTrip(t *testing.T) {
	view := Parse("n1,N2")
	got := ToDBString(view.Validated)
	if got != "N1,N2" {
		t.Fatalf("ToDBString = %q, want N1,N2", got)
	}
}

func TestOnlyN1(t *testing.T) {
	view := Parse("N1")
	if view.Display != "N1" {
		t.Fatalf("expected display N1, got %q", view.Display)
	}
	if view.IsInstructor {
		t.Fatalf("N1 alone must not be instructor")
	}
}
