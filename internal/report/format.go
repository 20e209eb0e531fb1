package report

import (
	"fmt"
	"strings"
)

// Format identifies an output format. Its value is the file extension
// without the dot.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatDOCX     Format = "docx"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatParquet  Format = "parquet"
)

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatJSON, FormatDOCX, FormatXLSX, FormatMarkdown, FormatHTML, FormatCSV, FormatParquet}
}

// DefaultFormats are the formats produced when none is requested.
func DefaultFormats() []Format {
	return []Format{FormatDOCX, FormatJSON, FormatXLSX}
}

// Extension returns the file extension of the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}

// ParseFormat converts a user supplied name into a Format.
func ParseFormat(name string) (Format, error) {
	switch n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")); n {
	case "markdown":
		return FormatMarkdown, nil
	case "htm":
		return FormatHTML, nil
	case "word":
		return FormatDOCX, nil
	case "excel":
		return FormatXLSX, nil
	default:
		for _, f := range AllFormats() {
			if string(f) == n {
				return f, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ParseFormats parses a list of names, dropping duplicates while keeping order.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]struct{}, len(names))
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		formats = append(formats, f)
	}
	return formats, nil
}
