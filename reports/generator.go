package reports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/librarystore"
)

const logMsgReportGenerated = "report generated"

// Generator builds reports from a Source and writes them to files.
type Generator struct {
	source    Source
	outputDir string
	now       func() time.Time
	logger    librarystore.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithOutputDir sets the directory relative file names are resolved against.
func WithOutputDir(dir string) GeneratorOption {
	return func(g *Generator) {
		g.outputDir = dir
	}
}

// WithClock replaces time.Now as the source of the report date.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger logs every generated report at info level.
func WithLogger(logger librarystore.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator writing into the working directory.
func NewGenerator(source Source, opts ...GeneratorOption) *Generator {
	g := &Generator{
		source:    source,
		outputDir: ".",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Today returns the date reports are built for.
func (g *Generator) Today() time.Time {
	return librarystore.DateOf(g.now())
}

// Build builds the report of the given kind as of today.
func (g *Generator) Build(ctx context.Context, kind Kind) (Report, error) {
	return Build(ctx, g.source, kind, g.Today())
}

// Stats returns the dashboard statistics as of today.
func (g *Generator) Stats(ctx context.Context) (DashboardStats, error) {
	return Stats(ctx, g.source, g.Today())
}

// Generate builds the report and writes it to filename, in the format its extension names.
// An empty filename selects the report's default PDF file name.
// It returns the absolute path of the written file.
func (g *Generator) Generate(ctx context.Context, kind Kind, filename string) (string, error) {
	if filename == "" {
		filename = DefaultFilename(kind, FormatPDF)
	}

	format, err := FormatOf(filename)
	if err != nil {
		return "", err
	}

	report, err := g.Build(ctx, kind)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(filename) {
		filename = filepath.Join(g.outputDir, filename)
	}

	path, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}

	if err = writeFile(path, report, format); err != nil {
		return "", err
	}

	if g.logger != nil {
		g.logger.Info(logMsgReportGenerated, "kind", string(kind), "path", path, "row_count", len(report.Rows))
	}

	return path, nil
}

func writeFile(path string, report Report, format Format) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	return Render(file, report, format)
}
