package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/medical-reports/pkg/models/domain"
)

type TableConfig struct {
	NameWidth     int
	SequenceWidth int
	SizeWidth     int
	ModifiedWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:     32,
		SequenceWidth: 8,
		SizeWidth:     10,
		ModifiedWidth: 25,
	}
}

// Reporter renders report file listings as a text table
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type listing struct {
	Dir   string
	Files []domain.ReportFile
}

func (c *Reporter) Handle(dir string, files []domain.ReportFile) error {
	funcMap := template.FuncMap{
		"formatRow": func(name string, seq any, size any, modified string) string {
			return fmt.Sprintf("| %-*s | %*v | %*v | %-*s |",
				c.config.NameWidth, name,
				c.config.SequenceWidth, seq,
				c.config.SizeWidth, size,
				c.config.ModifiedWidth, modified)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.SequenceWidth+2),
				strings.Repeat("-", c.config.SizeWidth+2),
				strings.Repeat("-", c.config.ModifiedWidth+2))
		},
	}

	tmpl := `Reports in {{.Dir}}: {{len .Files}}
{{separator}}
{{formatRow "Name" "Seq" "Bytes" "Modified"}}
{{separator}}
{{range .Files}}{{formatRow .Name .Sequence .Size (.ModTime.UTC.Format "2006-01-02T15:04:05Z07:00")}}
{{end}}{{separator}}
`

	t, err := template.New("reports").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, listing{Dir: dir, Files: files})
}
