package domain

import (
	"fmt"
	"time"
)

const (
	ReportFilePrefix    = "medical-report-"
	ReportFileExtension = ".pdf"
	ReportContentType   = "application/pdf"
)

// ReportFileName returns the on-disk name of the report with the given sequence number.
func ReportFileName(sequence int) string {
	return fmt.Sprintf("%s%d%s", ReportFilePrefix, sequence, ReportFileExtension)
}

// Report represents one generated report artifact
type Report struct {
	Sequence    int
	Path        string
	GeneratedAt time.Time
}

// ReportFile is a report found on disk
type ReportFile struct {
	Name     string
	Sequence int
	Size     int64
	ModTime  time.Time
}

// Topic is a single numbered entry of the report body
type Topic struct {
	Title   string
	Details string
}

// Template holds the fixed content every report is rendered from
type Template struct {
	Organization string
	Title        string
	UpdatedLabel string
	Summary      string
	Topics       []Topic
	Footer       string
}

// Document is a fully resolved template, ready to be rendered
type Document struct {
	Template
	Sequence    int
	GeneratedAt time.Time
	// Timestamp is GeneratedAt formatted for the reader's locale.
	Timestamp string
}
