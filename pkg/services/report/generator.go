package report

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/services/report/render"
	"github.com/rs/zerolog"
)

const DefaultTimeLayout = "02 Jan 2006 15:04:05 MST"

// Generator produces the report with the given sequence number and returns
// the path of the written file.
type Generator interface {
	Generate(ctx context.Context, sequence int) (string, error)
}

// Writer persists a rendered report under its file name.
type Writer interface {
	WriteAtomic(name string, data []byte) (string, error)
}

// Options configure a FileGenerator. Validator is optional; when set, rendered
// bytes must pass it before being written.
type Options struct {
	Template   domain.Template
	Location   *time.Location
	TimeLayout string
	Validator  render.Validator
	Now        func() time.Time
}

type FileGenerator struct {
	writer    Writer
	renderer  render.Renderer
	validator render.Validator
	template  domain.Template
	location  *time.Location
	layout    string
	now       func() time.Time
}

func NewFileGenerator(writer Writer, renderer render.Renderer, opts Options) *FileGenerator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Template.Topics) == 0 && opts.Template.Title == "" {
		opts.Template = domain.DefaultTemplate()
	}

	return &FileGenerator{
		writer:    writer,
		renderer:  renderer,
		validator: opts.Validator,
		template:  opts.Template,
		location:  opts.Location,
		layout:    opts.TimeLayout,
		now:       opts.Now,
	}
}

func (g *FileGenerator) Generate(ctx context.Context, sequence int) (string, error) {
	if sequence < 1 {
		return "", fmt.Errorf("invalid report sequence %d", sequence)
	}

	now := g.now().In(g.location)
	doc := domain.Document{
		Template:    g.template,
		Sequence:    sequence,
		GeneratedAt: now,
		Timestamp:   now.Format(g.layout),
	}

	data, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to render report %d: %w", sequence, err)
	}

	if g.validator != nil {
		if err := g.validator.Validate(data); err != nil {
			return "", fmt.Errorf("report %d failed validation: %w", sequence, err)
		}
	}

	// a timed out attempt must not replace anything on disk
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("report %d abandoned: %w", sequence, err)
	}

	name := domain.ReportFileName(sequence)
	path, err := g.writer.WriteAtomic(name, data)
	if err != nil {
		return "", fmt.Errorf("failed to write report %d: %w", sequence, err)
	}

	zerolog.Ctx(ctx).Debug().
		Int("sequence", sequence).
		Int("bytes", len(data)).
		Str("path", path).
		Msg("report written")

	return path, nil
}
