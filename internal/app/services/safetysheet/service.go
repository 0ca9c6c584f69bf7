// Package safetysheet synthesizes the per-session safety sheet PDF from the
// palanquée composition tree: one table per rotation, paginated so a
// rotation is never split across pages.
package safetysheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/qualification"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/metrics"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/internal/platform/pdf"
	"github.com/divingclub/opscore/pkg/logger"
)

const metricKind = "safety_sheet"

const (
	pageWidth          = 842.0
	pageHeight         = 595.0
	margin             = 25.0
	rowHeight          = 16.0
	headerHeight       = 18.0
	rotationHeaderHeight = 22.0
	minBottomMargin    = 40.0
)

var columnWidths = [7]float64{160, 55, 75, 70, 55, 185, 182}
var columnHeaders = [7]string{"NOM Prenom", "Gaz", "Aptitude", "Prepa", "Fonction", "Params Prevus", "Params Realises"}

// Options carries the operator-supplied fields that have no automatic
// source: everything else is derived from the palanquée tree.
type Options struct {
	Club             string
	Position         string
	SecuritySurface  string
	Observations     string
}

// Service renders safety sheets for a session.
type Service struct {
	palanquees storage.PalanqueeStore
	questions  storage.QuestionnaireStore
	persons    storage.PersonStore
	log        *logger.Logger
}

// New constructs a safety-sheet synthesizer.
func New(palanquees storage.PalanqueeStore, questions storage.QuestionnaireStore, persons storage.PersonStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("safetysheet")
	}
	return &Service{palanquees: palanquees, questions: questions, persons: persons, log: log}
}

type member struct {
	name      string
	gas       string
	aptitude  string
	preparing string
	role      palanquee.Role
}

type pal struct {
	number  int
	members []member
	planned palanquee.Params
	actual  palanquee.Params
}

type rotation struct {
	number int
	pals   []pal
}

// Generate renders the safety sheet PDF for sess, returning well-formed PDF
// bytes with no temporary files.
func (s *Service) Generate(ctx context.Context, sess session.Session, opts Options) (doc []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordPDFGeneration(metricKind, time.Since(start), len(doc), err)
	}()

	rotations, err := s.palanquees.ListRotationsBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	questionnaires, err := s.questions.ListQuestionnairesBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	questionnaireByID := make(map[string]questionnaire.Questionnaire, len(questionnaires))
	var dpName string
	for _, q := range questionnaires {
		questionnaireByID[q.ID] = q
		if q.IsDirecteurPlongee {
			if p, err := s.persons.GetPerson(ctx, q.PersonID); err == nil {
				dpName = p.FullName()
			}
		}
	}

	uniqueAttendees := map[string]bool{}
	var data []rotation
	for _, r := range rotations {
		palanquees, err := s.palanquees.ListPalanqueesByRotation(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		rd := rotation{number: r.Number}
		for _, p := range palanquees {
			members, err := s.palanquees.ListMembersByPalanquee(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			pd := pal{number: p.Number, planned: p.Planned, actual: p.Actual}
			for _, m := range members {
				uniqueAttendees[m.QuestionnaireID] = true
				q := questionnaireByID[m.QuestionnaireID]
				prsn, err := s.persons.GetPerson(ctx, q.PersonID)
				if err != nil {
					continue
				}
				level := qualification.Parse(divingLevel(prsn))
				preparing := ""
				if level.Preparing != nil {
					preparing = string(*level.Preparing)
				}
				pd.members = append(pd.members, member{
					name:      strings.ToUpper(prsn.LastName) + " " + prsn.FirstName,
					gas:       string(m.Gas),
					aptitude:  level.Display,
					preparing: preparing,
					role:      m.Role,
				})
			}
			sortMembers(pd.members)
			rd.pals = append(rd.pals, pd)
		}
		data = append(data, rd)
	}

	content := draw(sess, opts, data, len(uniqueAttendees), dpName)
	b := pdf.NewBuilder(pageWidth, pageHeight)
	for _, page := range content {
		b.AddPage(page)
	}
	s.log.WithField("session_id", sess.ID).WithField("page_count", len(content)).Info("safety sheet generated")
	doc = b.Build()
	return doc, nil
}

func divingLevel(p person.Person) string {
	if p.DivingLevel == nil {
		return ""
	}
	return *p.DivingLevel
}

func sortMembers(members []member) {
	priority := func(r palanquee.Role) int { return palanquee.RolePriority(r) }
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && priority(members[j].role) < priority(members[j-1].role); j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
}

func rotationHeight(r rotation) float64 {
	h := rotationHeaderHeight + headerHeight
	for _, p := range r.pals {
		rows := len(p.members)
		if rows < 1 {
			rows = 1
		}
		h += float64(rows) * rowHeight
	}
	return h + 15
}

// draw lays out the full document, returning one content-stream byte slice
// per page; a rotation is the pagination atom and is never split.
func draw(sess session.Session, opts Options, rotations []rotation, uniqueAttendees int, dpName string) [][]byte {
	var pages [][]byte
	var cur []byte
	y := pageHeight - margin
	firstPage := true
	pageNum := 1

	cur, y = drawHeader(cur, sess, opts, uniqueAttendees, dpName, y)

	for _, r := range rotations {
		h := rotationHeight(r)
		if y-h < minBottomMargin && !firstPage {
			pages = append(pages, cur)
			cur = nil
			y = pageHeight - margin
			pageNum++
			cur, y = drawContinuationHeader(cur, sess, y, pageNum)
		}
		cur, y = drawRotation(cur, r, y)
		firstPage = false
	}

	cur = drawLegend(cur, y-10)
	cur = drawFooter(cur, pageNum)
	pages = append(pages, cur)
	return pages
}

func app(buf []byte, format string, args ...interface{}) []byte {
	return append(buf, []byte(fmt.Sprintf(format, args...))...)
}

func drawHeader(buf []byte, sess session.Session, opts Options, uniqueAttendees int, dpName string, y float64) ([]byte, float64) {
	width := pageWidth - 2*margin

	titleHeight := 28.0
	buf = app(buf, "0.2 0.4 0.7 rg %.2f %.2f %.2f %.2f re f\n", margin, y-titleHeight, width, titleHeight)
	buf = app(buf, "1 1 1 rg\n")
	buf = app(buf, "BT /F2 16 Tf %.2f %.2f Td (FICHE DE SECURITE) Tj ET\n", pageWidth/2-75, y-19)
	buf = app(buf, "0 g\n")
	y -= titleHeight + 8

	infoHeight := 55.0
	buf = app(buf, "0.95 0.95 0.97 rg %.2f %.2f %.2f %.2f re f\n", margin, y-infoHeight, width, infoHeight)
	buf = app(buf, "0.7 0.7 0.7 RG 0.5 w %.2f %.2f %.2f %.2f re S\n", margin, y-infoHeight, width, infoHeight)

	col1 := margin + 10
	col2 := margin + 220
	col3 := margin + 480
	col4 := margin + 680

	date := sess.ReferenceDate().Format("02/01/2006")

	buf = app(buf, "0 0 0 rg\n")
	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (Date:) Tj ET\n", col1, y-14)
	buf = app(buf, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", col1+35, y-14, pdf.EscapeText(date))

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (Club:) Tj ET\n", col2, y-14)
	buf = app(buf, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", col2+35, y-14, pdf.EscapeText(opts.Club))

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (Effectif:) Tj ET\n", col4, y-14)
	buf = app(buf, "0.2 0.5 0.2 rg\n")
	buf = app(buf, "BT /F2 14 Tf %.2f %.2f Td (%d) Tj ET\n", col4+55, y-14, uniqueAttendees)
	buf = app(buf, "0 0 0 rg\n")

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (Site:) Tj ET\n", col1, y-30)
	buf = app(buf, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", col1+35, y-30, pdf.EscapeText(sess.Location))

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (DP:) Tj ET\n", col2, y-30)
	buf = app(buf, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", col2+25, y-30, pdf.EscapeText(dpName))

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (Position:) Tj ET\n", col3, y-30)
	buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", col3+55, y-30, pdf.EscapeText(opts.Position))

	buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (S\\351curit\\351 surface:) Tj ET\n", col1, y-46)
	buf = app(buf, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", col1+100, y-46, pdf.EscapeText(opts.SecuritySurface))

	if opts.Observations != "" {
		buf = app(buf, "BT /F2 9 Tf %.2f %.2f Td (Obs:) Tj ET\n", col3, y-46)
		buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", col3+30, y-46, pdf.EscapeText(opts.Observations))
	}

	return buf, y - infoHeight - 12
}

func drawContinuationHeader(buf []byte, sess session.Session, y float64, page int) ([]byte, float64) {
	width := pageWidth - 2*margin
	headerH := 22.0
	date := sess.ReferenceDate().Format("02/01/2006")

	buf = app(buf, "0.2 0.4 0.7 rg %.2f %.2f %.2f %.2f re f\n", margin, y-headerH, width, headerH)
	buf = app(buf, "1 1 1 rg\n")
	buf = app(buf, "BT /F2 12 Tf %.2f %.2f Td (FICHE DE SECURITE - %s - Page %d) Tj ET\n",
		margin+10, y-15, pdf.EscapeText(date), page)
	buf = app(buf, "0 g\n")
	return buf, y - headerH - 10
}

func drawRotation(buf []byte, r rotation, y float64) ([]byte, float64) {
	width := pageWidth - 2*margin

	buf = app(buf, "0.15 0.45 0.25 rg %.2f %.2f %.2f %.2f re f\n", margin, y-rotationHeaderHeight, width, rotationHeaderHeight)
	buf = app(buf, "1 1 1 rg\n")
	buf = app(buf, "BT /F2 12 Tf %.2f %.2f Td (ROTATION %d) Tj ET\n", margin+15, y-15, r.number)
	buf = app(buf, "0 g\n")
	y -= rotationHeaderHeight

	buf = app(buf, "0.85 0.9 0.95 rg %.2f %.2f %.2f %.2f re f\n", margin, y-headerHeight, width, headerHeight)
	colX := margin
	buf = app(buf, "0.1 0.1 0.3 rg\n")
	for i, w := range columnWidths {
		buf = app(buf, "BT /F2 8 Tf %.2f %.2f Td (%s) Tj ET\n", colX+3, y-12, columnHeaders[i])
		colX += w
	}
	buf = app(buf, "0 g\n")

	buf = app(buf, "0.6 0.6 0.7 RG 0.3 w\n")
	colX = margin
	for _, w := range columnWidths {
		buf = app(buf, "%.2f %.2f m %.2f %.2f l S\n", colX, y, colX, y-headerHeight)
		colX += w
	}
	buf = app(buf, "%.2f %.2f m %.2f %.2f l S\n", colX, y, colX, y-headerHeight)
	buf = app(buf, "%.2f %.2f m %.2f %.2f l S\n", margin, y-headerHeight, margin+width, y-headerHeight)
	y -= headerHeight

	rotationTop := y
	for palIdx, p := range r.pals {
		rows := len(p.members)
		if rows < 1 {
			rows = 1
		}
		palHeight := float64(rows) * rowHeight

		if palIdx%2 == 1 {
			buf = app(buf, "0.97 0.97 0.98 rg %.2f %.2f %.2f %.2f re f\n", margin, y-palHeight, width, palHeight)
		}

		buf = app(buf, "0.4 0.3 0.6 rg %.2f %.2f %.2f %.2f re f\n", margin-22, y-palHeight, 20.0, palHeight)
		buf = app(buf, "1 1 1 rg\n")
		buf = app(buf, "BT /F2 9 Tf %.2f %.2f Td (P%d) Tj ET\n", margin-19, y-palHeight/2-3, p.number)
		buf = app(buf, "0 g\n")

		memberY := y - rowHeight + 4
		for _, m := range p.members {
			colX = margin
			buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+5, memberY, pdf.EscapeText(m.name))
			colX += columnWidths[0]

			if m.gas == string(palanquee.GasNitrox) {
				buf = app(buf, "0.7 0.5 0 rg\n")
			} else {
				buf = app(buf, "0.2 0.4 0.6 rg\n")
			}
			buf = app(buf, "BT /F2 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+5, memberY, pdf.EscapeText(m.gas))
			buf = app(buf, "0 g\n")
			colX += columnWidths[1]

			buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+5, memberY, pdf.EscapeText(m.aptitude))
			colX += columnWidths[2]

			if m.preparing != "" {
				buf = app(buf, "0.6 0.3 0 rg\n")
				buf = app(buf, "BT /F2 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+5, memberY, pdf.EscapeText(m.preparing))
				buf = app(buf, "0 g\n")
			}
			colX += columnWidths[3]

			switch m.role {
			case palanquee.RoleInstructor, palanquee.RoleGuide:
				buf = app(buf, "0.5 0.2 0.5 rg\n")
				buf = app(buf, "BT /F2 10 Tf %.2f %.2f Td (%s) Tj ET\n", colX+15, memberY, string(m.role))
			default:
				buf = app(buf, "0.3 0.3 0.3 rg\n")
				buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+18, memberY, string(m.role))
			}
			buf = app(buf, "0 g\n")
			memberY -= rowHeight
		}

		paramsY := y - palHeight/2 - 3
		colX = margin
		for i := 0; i < 5; i++ {
			colX += columnWidths[i]
		}

		buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+10, paramsY, pdf.EscapeText(formatPlanned(p.planned)))
		colX += columnWidths[5]
		buf = app(buf, "BT /F1 9 Tf %.2f %.2f Td (%s) Tj ET\n", colX+10, paramsY, pdf.EscapeText(formatActual(p.actual)))

		buf = app(buf, "0.8 0.8 0.85 RG 0.3 w\n")
		colX = margin
		for _, w := range columnWidths {
			colX += w
			buf = app(buf, "%.2f %.2f m %.2f %.2f l S\n", colX, y, colX, y-palHeight)
		}

		y -= palHeight
		buf = app(buf, "0.7 0.7 0.75 RG %.2f %.2f m %.2f %.2f l S\n", margin, y, margin+width, y)
	}

	totalHeight := rotationTop - y + headerHeight
	buf = app(buf, "0.3 0.3 0.4 RG 1 w %.2f %.2f %.2f %.2f re S\n", margin, y, width, totalHeight)

	return buf, y - 12
}

func formatPlanned(p palanquee.Params) string {
	departure := "__:__"
	if p.Departure != nil {
		departure = p.Departure.Format("15:04")
	}
	duration := "__"
	if p.Duration != nil {
		duration = fmt.Sprintf("%d", *p.Duration)
	}
	depth := "__"
	if p.Depth != nil {
		depth = fmt.Sprintf("%g", *p.Depth)
	}
	return fmt.Sprintf("%s - %s' - %sm", departure, duration, depth)
}

func formatActual(p palanquee.Params) string {
	departure := "__:__"
	if p.Departure != nil {
		departure = p.Departure.Format("15:04")
	}
	ret := "__:__"
	if p.Return != nil {
		ret = p.Return.Format("15:04")
	}
	duration := "__"
	if p.Duration != nil {
		duration = fmt.Sprintf("%d", *p.Duration)
	}
	depth := "__"
	if p.Depth != nil {
		depth = fmt.Sprintf("%g", *p.Depth)
	}
	return fmt.Sprintf("%s - %s / %s' / %sm", departure, ret, duration, depth)
}

func drawLegend(buf []byte, y float64) []byte {
	buf = app(buf, "0.4 0.4 0.4 rg\n")
	buf = app(buf, "BT /F1 8 Tf %.2f %.2f Td (L\\351gende: E = Encadrant    GP = Guide de Palanqu\\351e    P = Plongeur) Tj ET\n", margin, y)
	buf = app(buf, "0 g\n")
	return buf
}

func drawFooter(buf []byte, page int) []byte {
	buf = app(buf, "0.5 0.5 0.5 rg\n")
	buf = app(buf, "BT /F1 8 Tf %.2f %.2f Td (Page %d) Tj ET\n", pageWidth-60, 20.0, page)
	buf = app(buf, "0 g\n")
	return buf
}
