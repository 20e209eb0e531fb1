package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 70em; margin: 2em auto; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 0.3em 0.6em; }
th { background: #4f81bd; color: #fff; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTMLExporter renders the Markdown summary as a standalone HTML page.
type HTMLExporter struct {
	markdown *MarkdownExporter
	engine   goldmark.Markdown
}

// NewHTMLExporter creates an HTMLExporter.
func NewHTMLExporter(opts ...Option) *HTMLExporter {
	return &HTMLExporter{
		markdown: NewMarkdownExporter(opts...),
		engine:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Format implements Exporter.
func (e *HTMLExporter) Format() Format {
	return FormatHTML
}

// Export implements Exporter.
func (e *HTMLExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatHTML, data)
	if err != nil {
		return "", err
	}

	var src bytes.Buffer
	if err := e.markdown.render(&src, r); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var body bytes.Buffer
	if err := e.engine.Convert(src.Bytes(), &body); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	title := html.EscapeString(r.ProjectName() + " analysis report")
	return writeFile(dir, filename, FormatHTML, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, htmlPage, title, body.String())
		return err
	})
}
