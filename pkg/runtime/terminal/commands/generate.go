package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/services/report"
	"github.com/de-tools/medical-reports/pkg/services/report/render"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	"github.com/spf13/cobra"
)

type ReportPrinter interface {
	Handle(report *domain.Report) error
}

type GenerateCmd struct {
	dir      string
	sequence int
	timezone string
	timeout  time.Duration
	printer  ReportPrinter
}

func NewGenerateCmd(printer ReportPrinter) *cobra.Command {
	gc := &GenerateCmd{printer: printer}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a single report",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.dir, "dir", "uploads", "Reports directory")
	cmd.Flags().IntVar(&gc.sequence, "sequence", 0, "Sequence number (default: one past the highest on disk)")
	cmd.Flags().StringVar(&gc.timezone, "timezone", "UTC", "Time zone of the report timestamp")
	cmd.Flags().DurationVar(&gc.timeout, "timeout", 30*time.Second, "Generation timeout")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), gc.timeout)
	defer cancel()

	loc, err := time.LoadLocation(gc.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", gc.timezone, err)
	}

	dir, err := filesystem.NewDirectory(gc.dir)
	if err != nil {
		return err
	}

	sequence := gc.sequence
	if sequence <= 0 {
		highest, err := dir.HighestSequence()
		if err != nil {
			return err
		}
		sequence = highest + 1
	}

	now := time.Now()
	generator := report.NewFileGenerator(dir, render.NewPDFRenderer(render.DefaultPDFOptions()), report.Options{
		Template:  domain.DefaultTemplate(),
		Location:  loc,
		Validator: render.NewPDFValidator(),
		Now:       func() time.Time { return now },
	})

	path, err := generator.Generate(ctx, sequence)
	if err != nil {
		return err
	}

	return gc.printer.Handle(&domain.Report{
		Sequence:    sequence,
		Path:        path,
		GeneratedAt: now.In(loc),
	})
}
