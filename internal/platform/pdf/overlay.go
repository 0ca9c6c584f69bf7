package pdf

import (
	"fmt"
	"strings"
)

// PageCount returns the number of pages in data's Pages tree.
func PageCount(data []byte) (int, error) {
	doc, err := Parse(data)
	if err != nil {
		return 0, err
	}
	pages, err := doc.pageList()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPageDimensions reads MediaBox (falling back to CropBox, then to US
// Letter 612x792) for the given 1-based page, walking the Pages tree for
// an inherited box when the page dict carries neither directly.
func GetPageDimensions(data []byte, page int) (width, height float64, err error) {
	doc, err := Parse(data)
	if err != nil {
		return 0, 0, err
	}
	pages, err := doc.pageList()
	if err != nil {
		return 0, 0, err
	}
	if page < 1 || page > len(pages) {
		return 0, 0, fmt.Errorf("page %d out of range (document has %d pages)", page, len(pages))
	}
	w, h := doc.mediaBox(pages[page-1])
	return w, h, nil
}

// Overlay is one piece of text to place on a page, in PDF points with the
// origin at the page's bottom-left corner.
type Overlay struct {
	Page     int
	X, Y     float64
	FontSize float64
	Text     string
}

// ApplyOverlays appends one new, uncompressed content stream per affected
// page — rather than rewriting the page's existing content stream, which
// may be Flate-compressed — and links it into that page's /Contents array.
// The returned bytes are a freshly serialized, well-formed PDF.
func ApplyOverlays(data []byte, overlays []Overlay) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	pages, err := doc.pageList()
	if err != nil {
		return nil, err
	}

	byPage := map[int][]Overlay{}
	for _, o := range overlays {
		if o.Page < 1 || o.Page > len(pages) {
			return nil, fmt.Errorf("page %d out of range (document has %d pages)", o.Page, len(pages))
		}
		byPage[o.Page] = append(byPage[o.Page], o)
	}

	for pageNum, items := range byPage {
		pageObjNum := pages[pageNum-1]
		var sb strings.Builder
		for _, o := range items {
			fmt.Fprintf(&sb, "\nBT /F1 %s Tf %s %s Td (%s) Tj ET\n",
				formatNum(o.FontSize), formatNum(o.X), formatNum(o.Y), EscapeText(o.Text))
		}
		contentNum := doc.addObject(value{kind: 'd', dict: map[string]value{}}, []byte(sb.String()), true)
		doc.appendContent(pageObjNum, contentNum)
	}

	return doc.serialize(), nil
}

// pageList returns page object numbers in document order by walking the
// Pages tree rooted at the catalog's /Pages entry.
func (d *Document) pageList() ([]int, error) {
	root, ok := d.objects[d.root]
	if !ok {
		return nil, fmt.Errorf("root object %d not found", d.root)
	}
	pagesRef, ok := root.val.dict["Pages"]
	if !ok || pagesRef.kind != 'r' {
		return nil, fmt.Errorf("catalog missing /Pages reference")
	}

	var out []int
	seen := map[int]bool{}
	var walk func(num int) error
	walk = func(num int) error {
		if seen[num] {
			return nil
		}
		seen[num] = true
		obj, ok := d.objects[num]
		if !ok {
			return fmt.Errorf("object %d not found", num)
		}
		if kids, ok := obj.val.dict["Kids"]; ok && kids.kind == 'a' {
			for _, k := range kids.arr {
				if k.kind == 'r' {
					if err := walk(k.ref.num); err != nil {
						return err
					}
				}
			}
			return nil
		}
		out = append(out, num)
		return nil
	}
	if err := walk(pagesRef.ref.num); err != nil {
		return nil, err
	}
	return out, nil
}

// mediaBox resolves the page's box, inheriting up the /Parent chain.
func (d *Document) mediaBox(pageObjNum int) (float64, float64) {
	num := pageObjNum
	for i := 0; i < 50 && num != 0; i++ {
		obj, ok := d.objects[num]
		if !ok {
			break
		}
		if box, ok := boxDims(obj.val.dict["MediaBox"]); ok {
			return box[0], box[1]
		}
		if box, ok := boxDims(obj.val.dict["CropBox"]); ok {
			return box[0], box[1]
		}
		parent, hasParent := obj.val.dict["Parent"]
		if !hasParent || parent.kind != 'r' {
			break
		}
		num = parent.ref.num
	}
	return 612, 792
}

func boxDims(v value) ([2]float64, bool) {
	if v.kind != 'a' || len(v.arr) < 4 {
		return [2]float64{}, false
	}
	for _, c := range v.arr {
		if c.kind != 'n' {
			return [2]float64{}, false
		}
	}
	return [2]float64{v.arr[2].num, v.arr[3].num}, true
}

// appendContent adds contentObjNum to pageObjNum's /Contents, converting a
// single-stream Contents entry into an array when necessary.
func (d *Document) appendContent(pageObjNum, contentObjNum int) {
	page := d.objects[pageObjNum]
	newRef := value{kind: 'r', ref: ref{num: contentObjNum}}

	existing, ok := page.val.dict["Contents"]
	switch {
	case !ok:
		page.val.dict["Contents"] = newRef
	case existing.kind == 'a':
		existing.arr = append(existing.arr, newRef)
		page.val.dict["Contents"] = existing
	default:
		page.val.dict["Contents"] = value{kind: 'a', arr: []value{existing, newRef}}
	}
}

// addObject appends a new indirect object and returns its number.
func (d *Document) addObject(v value, stream []byte, hasStream bool) int {
	num := 0
	for n := range d.objects {
		if n > num {
			num = n
		}
	}
	num++
	d.objects[num] = &object{val: v, stream: stream, hasStream: hasStream}
	return num
}

// serialize re-emits every object at its original (or newly assigned)
// number, preserving all cross-references.
func (d *Document) serialize() []byte {
	maxNum := 0
	for n := range d.objects {
		if n > maxNum {
			maxNum = n
		}
	}

	type entry struct {
		present bool
		offset  int
	}
	offsets := make([]entry, maxNum+1)

	var body strings.Builder
	body.WriteString("%PDF-1.5\n")
	pos := len(body.String())

	for n := 1; n <= maxNum; n++ {
		obj, ok := d.objects[n]
		if !ok {
			continue
		}
		offsets[n] = entry{present: true, offset: pos}

		if obj.hasStream {
			if obj.val.dict == nil {
				obj.val.dict = map[string]value{}
			}
			obj.val.dict["Length"] = value{kind: 'n', num: float64(len(obj.stream))}
		}

		var chunk strings.Builder
		fmt.Fprintf(&chunk, "%d 0 obj\n%s\n", n, serializeValue(obj.val))
		if obj.hasStream {
			fmt.Fprintf(&chunk, "stream\n%s\nendstream\n", obj.stream)
		}
		chunk.WriteString("endobj\n")
		body.WriteString(chunk.String())
		pos += chunk.Len()
	}

	xrefStart := pos
	fmt.Fprintf(&body, "xref\n0 %d\n", maxNum+1)
	body.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if offsets[n].present {
			fmt.Fprintf(&body, "%010d 00000 n \n", offsets[n].offset)
		} else {
			body.WriteString("0000000000 00000 f \n")
		}
	}
	fmt.Fprintf(&body, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF", maxNum+1, d.root, xrefStart)

	return []byte(body.String())
}

// serializeValue re-emits a parsed value as PDF syntax. Dict objects
// carrying a stream (Length in particular) are written with their Length
// recalculated by the caller before this is reached; serializeValue itself
// never touches stream bytes.
func serializeValue(v value) string {
	switch v.kind {
	case 'n':
		return formatNum(v.num)
	case 'm':
		return "/" + v.name
	case 't', 'k':
		return v.name
	case 'r':
		return fmt.Sprintf("%d %d R", v.ref.num, v.ref.gen)
	case 'a':
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = serializeValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case 'd':
		var b strings.Builder
		b.WriteString("<< ")
		for k, e := range v.dict {
			b.WriteString("/" + k + " " + serializeValue(e) + " ")
		}
		b.WriteString(">>")
		return b.String()
	default:
		return ""
	}
}
