package pdf

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// value is a minimal PDF object value: enough of the COS object model to
// walk a Pages tree and read/rewrite a page's Contents and MediaBox. It
// does not cover compressed object streams or cross-reference streams
// (PDF 1.5+); every document this module produces or consumes is the
// classic object/xref/trailer form, so that limitation is never exercised.
type value struct {
	kind byte // 'n' number, 'm' name, 't' string (delimiters kept), 'k' bare keyword, 'r' reference, 'a' array, 'd' dict
	num  float64
	name string
	ref  ref
	arr  []value
	dict map[string]value
}

type ref struct{ num, gen int }

// object is one parsed indirect object: its top-level value (almost always
// a dict) plus its stream bytes, if any.
type object struct {
	val       value
	stream    []byte
	hasStream bool
}

// Document is a parsed PDF, addressable by object number.
type Document struct {
	objects map[int]*object
	root    int
}

var objHeaderRe = regexp.MustCompile(`(?m)^\s*(\d+)\s+(\d+)\s+obj\b`)

// Parse reads a classic (non-object-stream) PDF into a Document.
func Parse(data []byte) (*Document, error) {
	doc := &Document{objects: map[int]*object{}}

	locs := objHeaderRe.FindAllSubmatchIndex(data, -1)
	for i, loc := range locs {
		num, _ := strconv.Atoi(string(data[loc[2]:loc[3]]))
		bodyStart := loc[1]
		bodyEnd := len(data)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := data[bodyStart:bodyEnd]

		endobj := bytes.LastIndex(body, []byte("endobj"))
		if endobj >= 0 {
			body = body[:endobj]
		}

		streamIdx := bytes.Index(body, []byte("stream"))
		var streamData []byte
		hasStream := false
		headerPart := body
		if streamIdx >= 0 {
			headerPart = body[:streamIdx]
			rest := body[streamIdx+len("stream"):]
			rest = bytes.TrimPrefix(rest, []byte("\r\n"))
			rest = bytes.TrimPrefix(rest, []byte("\n"))
			endstream := bytes.LastIndex(rest, []byte("endstream"))
			if endstream >= 0 {
				streamData = rest[:endstream]
				streamData = bytes.TrimSuffix(streamData, []byte("\r\n"))
				streamData = bytes.TrimSuffix(streamData, []byte("\n"))
				hasStream = true
			}
		}

		p := &parser{data: headerPart}
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", num, err)
		}

		doc.objects[num] = &object{val: v, stream: streamData, hasStream: hasStream}
	}

	rootNum, err := findTrailerRoot(data)
	if err != nil {
		return nil, err
	}
	doc.root = rootNum
	return doc, nil
}

var trailerRe = regexp.MustCompile(`(?s)trailer\s*(<<.*?>>)`)
var rootRefRe = regexp.MustCompile(`/Root\s+(\d+)\s+\d+\s+R`)

func findTrailerRoot(data []byte) (int, error) {
	if m := trailerRe.FindSubmatch(data); m != nil {
		if rm := rootRefRe.FindSubmatch(m[1]); rm != nil {
			n, _ := strconv.Atoi(string(rm[1]))
			return n, nil
		}
	}
	// Some documents carry the trailer dict inline on an xref stream object;
	// fall back to a direct scan over the whole buffer.
	if rm := rootRefRe.FindSubmatch(data); rm != nil {
		n, _ := strconv.Atoi(string(rm[1]))
		return n, nil
	}
	return 0, fmt.Errorf("no /Root reference found")
}

// parser is a recursive-descent reader over one object's header dictionary
// bytes (the part before any "stream" keyword).
type parser struct {
	data []byte
	pos  int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.pos++
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) parseValue() (value, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return value{}, fmt.Errorf("unexpected end of input")
	}
	switch p.data[p.pos] {
	case '/':
		return p.parseName(), nil
	case '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDict()
		}
		return p.parseHexString()
	case '[':
		return p.parseArray()
	case '(':
		return p.parseLiteralString()
	default:
		return p.parseNumberOrRef()
	}
}

func (p *parser) parseName() value {
	p.pos++ // consume '/'
	start := p.pos
	for p.pos < len(p.data) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return value{kind: 'm', name: string(p.data[start:p.pos])}
}

func (p *parser) parseDict() (value, error) {
	p.pos += 2 // consume '<<'
	d := map[string]value{}
	for {
		p.skipSpace()
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return value{kind: 'd', dict: d}, nil
		}
		if p.pos >= len(p.data) || p.data[p.pos] != '/' {
			return value{}, fmt.Errorf("expected key in dict at byte %d", p.pos)
		}
		key := p.parseName()
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		d[key.name] = v
	}
}

func (p *parser) parseArray() (value, error) {
	p.pos++ // consume '['
	var arr []value
	for {
		p.skipSpace()
		if p.pos < len(p.data) && p.data[p.pos] == ']' {
			p.pos++
			return value{kind: 'a', arr: arr}, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		arr = append(arr, v)
	}
}

func (p *parser) parseHexString() (value, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		p.pos++
	}
	p.pos++
	return value{kind: 't', name: string(p.data[start:p.pos])}, nil
}

func (p *parser) parseLiteralString() (value, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case '\\':
			p.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return value{kind: 't', name: string(p.data[start:p.pos])}, nil
			}
		}
		p.pos++
	}
	return value{}, fmt.Errorf("unterminated literal string")
}

func (p *parser) parseNumberOrRef() (value, error) {
	start := p.pos
	for p.pos < len(p.data) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	tok := string(p.data[start:p.pos])
	if tok == "" {
		return value{}, fmt.Errorf("empty token at byte %d", p.pos)
	}

	save := p.pos
	p.skipSpace()
	genStart := p.pos
	for p.pos < len(p.data) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	gen := string(p.data[genStart:p.pos])
	p.skipSpace()
	if p.pos < len(p.data) && p.data[p.pos] == 'R' && (p.pos+1 >= len(p.data) || isDelim(p.data[p.pos+1])) {
		n, err1 := strconv.Atoi(tok)
		g, err2 := strconv.Atoi(gen)
		if err1 == nil && err2 == nil {
			p.pos++
			return value{kind: 'r', ref: ref{num: n, gen: g}}, nil
		}
	}
	p.pos = save

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return value{kind: 'k', name: tok}, nil // bare keyword (true/false/null/R-without-context)
	}
	return value{kind: 'n', num: f}, nil
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '/', '[', ']', '<', '>', '(', ')':
		return true
	default:
		return false
	}
}
