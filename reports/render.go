package reports

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Format is an output format of a report.
type Format string

// Supported formats, named after their file extension.
const (
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for formats other than pdf and json.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ErrRenderingFailed wraps errors of the PDF and JSON renderers.
var ErrRenderingFailed = errors.New("rendering report failed")

// ParseFormat maps user input to a Format. The empty string selects PDF.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(value)) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// FormatOf derives the format from the extension of filename.
func FormatOf(filename string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}

	return "application/pdf"
}

// Render writes the report to w in the given format.
func Render(w io.Writer, report Report, format Format) error {
	switch format {
	case FormatPDF:
		return renderPDF(w, report)
	case FormatJSON:
		return renderJSON(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderJSON(w io.Writer, report Report) error {
	data, err := jsoniter.ConfigFastest.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Join(ErrRenderingFailed, err)
	}

	if _, err = w.Write(append(data, '\n')); err != nil {
		return errors.Join(ErrRenderingFailed, err)
	}

	return nil
}
