package terminal

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/medical-reports/pkg/models/domain"
)

// Reporter prints a single generated report
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `Report #{{.Sequence}} generated at {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
{{.Path}}
`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
