// Package pdf assembles and extends well-formed PDF byte streams without
// depending on an external PDF library: no suitable one appears in this
// module's dependency corpus, so the object/xref/trailer plumbing below
// follows the PDF 1.5 reference manual directly.
package pdf

import (
	"bytes"
	"fmt"
)

// Builder assembles a multi-page PDF document one content stream at a time.
// Every page shares the same MediaBox; pages are appended in order.
type Builder struct {
	width, height float64
	pages         [][]byte
}

// NewBuilder starts a document with a fixed page size in PDF points.
func NewBuilder(width, height float64) *Builder {
	return &Builder{width: width, height: height}
}

// AddPage appends one page's raw content-stream operators.
func (b *Builder) AddPage(content []byte) {
	b.pages = append(b.pages, content)
}

// pageObject is a not-yet-serialized indirect object; objects are numbered by
// their position (1-based) once the document is finalized.
type pageObject struct {
	body []byte
}

// Build serializes the document: a Catalog, a Pages tree, one Page and one
// content Stream per added page, and the two Helvetica fonts every page
// resource dictionary references.
func (b *Builder) Build() []byte {
	var objs []pageObject

	fontRegular := len(objs) + 1
	objs = append(objs, pageObject{body: []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")})
	fontBold := len(objs) + 1
	objs = append(objs, pageObject{body: []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")})

	resources := fmt.Sprintf("<< /Font << /F1 %d 0 R /F2 %d 0 R >> >>", fontRegular, fontBold)
	resourcesNum := len(objs) + 1
	objs = append(objs, pageObject{body: []byte(resources)})

	pagesNum := len(objs) + 1
	objs = append(objs, pageObject{}) // placeholder, filled in below once page numbers are known

	pageNums := make([]int, len(b.pages))
	contentNums := make([]int, len(b.pages))
	for i, content := range b.pages {
		contentNums[i] = len(objs) + 1
		stream := fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
		objs = append(objs, pageObject{body: []byte(stream)})

		pageNums[i] = len(objs) + 1
		pageDict := fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources %d 0 R /Contents %d 0 R >>",
			pagesNum, formatNum(b.width), formatNum(b.height), resourcesNum, contentNums[i],
		)
		objs = append(objs, pageObject{body: []byte(pageDict)})
	}

	kids := ""
	for i, n := range pageNums {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", n)
	}
	objs[pagesNum-1] = pageObject{body: []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pageNums)))}

	catalogNum := len(objs) + 1
	objs = append(objs, pageObject{body: []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum))})

	return serialize(objs, catalogNum)
}

// serialize writes the PDF header, every numbered object, the xref table,
// and the trailer pointing at catalogNum.
func serialize(objs []pageObject, catalogNum int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	offsets := make([]int, len(objs)+1) // 1-based; offsets[0] unused
	for i, o := range objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o.body)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objs); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF",
		len(objs)+1, catalogNum, xrefStart)

	return buf.Bytes()
}

func formatNum(f float64) string {
	if f == float64(int(f)) {
		return fmt.Sprintf("%d", int(f))
	}
	return fmt.Sprintf("%.2f", f)
}

// EscapeText encodes s for a PDF literal string: backslash and parentheses
// are backslash-escaped, non-ASCII runes fall back to octal escapes against
// WinAnsi's 8-bit code points (Latin-1 for the accented-letter range this
// module's content actually emits).
func EscapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '\\':
			buf.WriteString(`\\`)
		case '(':
			buf.WriteString(`\(`)
		case ')':
			buf.WriteString(`\)`)
		default:
			if r < 128 {
				buf.WriteRune(r)
			} else if r <= 255 {
				fmt.Fprintf(&buf, "\\%03o", r)
			} else {
				buf.WriteByte('?')
			}
		}
	}
	return buf.String()
}
