package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/de-tools/medical-reports/pkg/models/domain"
)

var (
	ErrInvalidName = errors.New("invalid report file name")
	ErrNotFound    = errors.New("report file not found")
)

var reportNamePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(domain.ReportFilePrefix) +
	`([1-9][0-9]*)` + regexp.QuoteMeta(domain.ReportFileExtension) + `$`)

// Directory is the folder holding generated reports. Every lookup by name is
// confined to it: names are checked against the report naming pattern and
// opened through an os.Root.
type Directory struct {
	path string
}

// NewDirectory creates the directory if it does not exist yet.
func NewDirectory(path string) (*Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reports directory %q: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory %q: %w", abs, err)
	}
	return &Directory{path: abs}, nil
}

func (d *Directory) Path() string {
	return d.path
}

// ParseReportName returns the sequence number encoded in a report file name.
func ParseReportName(name string) (int, error) {
	m := reportNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return seq, nil
}

// Open opens the named report for reading. The caller closes the file.
func (d *Directory) Open(name string) (*os.File, fs.FileInfo, error) {
	if _, err := ParseReportName(name); err != nil {
		return nil, nil, err
	}

	root, err := os.OpenRoot(d.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open reports directory: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, nil, notFound(name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return f, info, nil
}

// Stat returns file info of the named report.
func (d *Directory) Stat(name string) (fs.FileInfo, error) {
	if _, err := ParseReportName(name); err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reports directory: %w", err)
	}
	defer root.Close()

	info, err := root.Stat(name)
	if err != nil {
		return nil, notFound(name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return info, nil
}

// WriteAtomic writes data under name by renaming a synced temp file over it,
// so readers observe either the previous content or the complete new one.
func (d *Directory) WriteAtomic(name string, data []byte) (string, error) {
	if _, err := ParseReportName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(d.path, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %q: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to sync %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %q: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set permissions on %q: %w", name, err)
	}

	target := filepath.Join(d.path, name)
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("failed to move %q into place: %w", name, err)
	}
	return target, nil
}

// List returns the report files in the directory ordered by sequence number.
func (d *Directory) List() ([]domain.ReportFile, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	files := make([]domain.ReportFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		seq, err := ParseReportName(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, domain.ReportFile{
			Name:     entry.Name(),
			Sequence: seq,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Sequence < files[j].Sequence
	})
	return files, nil
}

// HighestSequence returns the largest sequence number on disk, or 0 if there is none.
func (d *Directory) HighestSequence() (int, error) {
	files, err := d.List()
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	return files[len(files)-1].Sequence, nil
}

func notFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fmt.Errorf("failed to open %q: %w", name, err)
}
