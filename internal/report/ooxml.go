package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// rowSpan is the byte range [start, end) of a top-level w:tr element and
// the text of its runs.
type rowSpan struct {
	start, end int64
	text       string
}

func isWord(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == "w" || name.Space == wordNamespace)
}

// scanRows locates the table rows of a WordprocessingML part. Rows nested in
// another row are part of their outer row.
func scanRows(part []byte) ([]rowSpan, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	var (
		rows   []rowSpan
		cur    rowSpan
		text   strings.Builder
		depth  int
		inText bool
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case isWord(t.Name, "tr"):
				if depth == 0 {
					cur = rowSpan{start: offset}
					text.Reset()
				}
				depth++
			case isWord(t.Name, "t"):
				inText = true
			}
		case xml.EndElement:
			switch {
			case isWord(t.Name, "t"):
				inText = false
			case isWord(t.Name, "tr"):
				if depth == 0 {
					return nil, fmt.Errorf("unbalanced </%s:tr> at offset %d", t.Name.Space, offset)
				}
				depth--
				if depth == 0 {
					cur.end = dec.InputOffset()
					cur.text = text.String()
					rows = append(rows, cur)
				}
			}
		case xml.CharData:
			if inText && depth > 0 {
				text.Write(t)
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unterminated table row")
	}
	return rows, nil
}

// renderPart fills one WordprocessingML part. Rows holding a collection
// placeholder are replaced by one copy per record; every other placeholder
// is substituted in place. It returns the collections it found a row for.
func (b *Bindings) renderPart(part []byte) ([]byte, map[string]bool, error) {
	rows, err := scanRows(part)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[string]bool)
	var out bytes.Buffer
	out.Grow(len(part))
	var last int64
	for _, row := range rows {
		collection, ok := CollectionOf(row.text)
		if !ok {
			continue
		}
		found[collection] = true
		out.Write(b.expandXML(part[last:row.start], nil))
		tmpl := part[row.start:row.end]
		for _, rec := range b.records(collection) {
			out.Write(b.expandXML(tmpl, rec))
		}
		last = row.end
	}
	out.Write(b.expandXML(part[last:], nil))
	return out.Bytes(), found, nil
}

func escapeXML(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
