package report

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

const documentPart = "word/document.xml"

// DOCXExporter merges a report into a Word template.
//
// The main document, headers and footers are rendered; every other entry of
// the template archive is copied byte for byte. The template file itself is
// only read.
type DOCXExporter struct {
	settings
}

// NewDOCXExporter creates a DOCXExporter. Without WithTemplate the built-in
// template is used.
func NewDOCXExporter(opts ...Option) *DOCXExporter {
	return &DOCXExporter{settings: newSettings(opts)}
}

// Format implements Exporter.
func (e *DOCXExporter) Format() Format {
	return FormatDOCX
}

// Export implements Exporter.
func (e *DOCXExporter) Export(data any, dir, filename string) (string, error) {
	r, err := reportPayload(FormatDOCX, data)
	if err != nil {
		return "", err
	}
	tmpl, err := e.loadTemplate()
	if err != nil {
		return "", err
	}
	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", ErrTemplateStructure, err)
	}

	b := NewBindings(r, e.notAvailable, e.logger)
	rendered := make(map[string][]byte)
	found := make(map[string]bool)
	for _, f := range zr.File {
		if !isRenderedPart(f.Name) {
			continue
		}
		src, err := readZipFile(f)
		if err != nil {
			return "", err
		}
		out, collections, err := b.renderPart(src)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrTemplateStructure, f.Name, err)
		}
		rendered[f.Name] = out
		for c := range collections {
			found[c] = true
		}
	}
	if _, ok := rendered[documentPart]; !ok {
		return "", fmt.Errorf("%w: missing %s", ErrTemplateStructure, documentPart)
	}
	for _, c := range e.required {
		if !found[c] {
			return "", fmt.Errorf("%w: no row template for %q", ErrTemplateStructure, c)
		}
	}

	e.logger.Debug("docx rendered", "parts", len(rendered), "issues", b.Len(CollectionIssues))

	return writeFile(dir, filename, FormatDOCX, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, f := range zr.File {
			out, ok := rendered[f.Name]
			if !ok {
				if err := zw.Copy(f); err != nil {
					return fmt.Errorf("copy %s: %w", f.Name, err)
				}
				continue
			}
			fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
			if err != nil {
				return fmt.Errorf("create %s: %w", f.Name, err)
			}
			if _, err := fw.Write(out); err != nil {
				return fmt.Errorf("write %s: %w", f.Name, err)
			}
		}
		return zw.Close()
	})
}

func (e *DOCXExporter) loadTemplate() ([]byte, error) {
	if e.template == "" {
		return DefaultDOCXTemplate()
	}
	data, err := os.ReadFile(e.template)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, e.template)
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return data, nil
}

// isRenderedPart reports whether a template entry may hold placeholders.
func isRenderedPart(name string) bool {
	if name == documentPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || path.Ext(file) != ".xml" {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}
