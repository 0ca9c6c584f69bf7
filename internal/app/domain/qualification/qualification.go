// Package qualification parses and ranks the club's composite diving-level
// strings: a comma-separated token set of validated qualifications plus an
// optional "preparing_<X>" marker for a qualification in progress.
package qualification

import "strings"

// Token is one recognized diving-qualification code.
type Token string

const (
	N1   Token = "N1"
	N2   Token = "N2"
	N3   Token = "N3"
	N4   Token = "N4"
	N5   Token = "N5"
	E2   Token = "E2"
	MF1  Token = "MF1"
	MF2  Token = "MF2"
	PE40 Token = "PE40"
	PA20 Token = "PA20"
	PA40 Token = "PA40"
	PE60 Token = "PE60"
	PA60 Token = "PA60"
)

// ranks is the fixed numeric ordering of every recognized token. Tokens not
// present here are unknown and dropped during parsing.
var ranks = map[Token]int{
	N1:   10,
	PE40: 11,
	PA20: 11,
	N2:   20,
	PA40: 21,
	PE60: 21,
	PA60: 21,
	N3:   30,
	N4:   40,
	N5:   50,
	E2:   55,
	MF1:  60,
	MF2:  70,
}

// competencies are the intermediate-qualification tokens excluded from
// "highest terminal level" computation.
var competencies = map[Token]bool{
	PE40: true,
	PA20: true,
	PA40: true,
	PE60: true,
	PA60: true,
}

const instructorThreshold = 55 // rank(E2)

// Rank returns the numeric rank of a token, or 0 if the token is unknown.
func Rank(t Token) int {
	return ranks[t]
}

// IsCompetency reports whether t is an intermediate competency rather than a
// terminal qualification level.
func IsCompetency(t Token) bool {
	return competencies[t]
}

// parse normalizes and looks up a single candidate token. The second return
// value is false for anything not in the rank table.
func parse(candidate string) (Token, bool) {
	t := Token(strings.ToUpper(strings.TrimSpace(candidate)))
	if _, ok := ranks[t]; !ok {
		return "", false
	}
	return t, true
}

// View is the parsed, total, pattern-exhaustive representation of a person's
// diving-level string.
type View struct {
	Validated      []Token
	Preparing      *Token
	HighestTerminal *Token
	IsInstructor   bool
	Display        string
}

// Parse is total: it never fails. Unknown tokens are silently dropped and an
// absent or empty input yields a View with no validated tokens.
func Parse(raw string) View {
	validated := parseValidated(raw)
	preparing := extractPreparing(raw)

	highest := highestTerminal(validated)

	view := View{
		Validated:       validated,
		Preparing:       preparing,
		HighestTerminal: highest,
	}
	if highest != nil {
		view.IsInstructor = Rank(*highest) >= instructorThreshold
		view.Display = string(*highest)
	} else {
		view.IsInstructor = false
		view.Display = "Aucun niveau"
	}
	return view
}

// parseValidated splits the raw diving-level string on commas, skips
// "preparing_"-prefixed markers, and parses every remaining token,
// dropping anything unrecognized.
func parseValidated(raw string) []Token {
	var out []Token
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(part), "preparing_") {
			continue
		}
		if t, ok := parse(part); ok {
			out = append(out, t)
		}
	}
	return out
}

// extractPreparing scans raw for a single "preparing_<X>" marker and returns
// its suffix token, if the suffix is itself a recognized token.
func extractPreparing(raw string) *Token {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)
		if !strings.HasPrefix(lower, "preparing_") {
			continue
		}
		suffix := part[len("preparing_"):]
		if t, ok := parse(suffix); ok {
			return &t
		}
	}
	return nil
}

// highestTerminal returns the validated token with the highest rank,
// excluding intermediate competencies, or nil if validated has none.
func highestTerminal(validated []Token) *Token {
	var best *Token
	bestRank := -1
	for i := range validated {
		t := validated[i]
		if IsCompetency(t) {
			continue
		}
		if r := Rank(t); r > bestRank {
			bestRank = r
			tok := t
			best = &tok
		}
	}
	return best
}

// ToDBString re-serializes the validated token set back to the legacy
// comma-joined storage form. Preparing markers are not persisted here; they
// are transient submission state, not validated progress.
func ToDBString(validated []Token) string {
	parts := make([]string, len(validated))
	for i, t := range validated {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}
