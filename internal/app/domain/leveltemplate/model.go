// Package leveltemplate models the operator-uploaded, per-qualification-level
// PDF template and the per-skill coordinate boxes positioned on it.
package leveltemplate

import "time"

// Template is one qualification level's uploaded PDF document.
type Template struct {
	ID        string
	Level     string // qualification level tag, e.g. "N1"
	FileName  string
	PageCount int
	Data      []byte // raw PDF bytes

	CreatedAt time.Time
	UpdatedAt time.Time
}

const defaultFontSize = 8.0

// SkillPosition is where a skill's validation annotation is rendered on a
// Template: unique per (SkillID, Level).
type SkillPosition struct {
	ID      string
	SkillID string
	Level   string
	Page    int
	X       float64
	Y       float64
	Width   float64
	Height  float64
	FontSize float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSkillPosition builds a SkillPosition whose FontSize is the default
// (8.0).
func NewSkillPosition(skillID, level string, page int, x, y, w, h float64) SkillPosition {
	return SkillPosition{
		SkillID: skillID, Level: level, Page: page,
		X: x, Y: y, Width: w, Height: h,
		FontSize: defaultFontSize,
	}
}
