package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/services/report/render"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Validate(data []byte) error {
	return m.Called(data).Error(0)
}

type failingWriter struct {
	err error
}

func (w failingWriter) WriteAtomic(string, []byte) (string, error) {
	return "", w.err
}

var fixedNow = time.Date(2025, 6, 13, 10, 30, 0, 0, time.UTC)

func newTestDirectory(t *testing.T) *filesystem.Directory {
	t.Helper()
	dir, err := filesystem.NewDirectory(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestFileGenerator_Generate(t *testing.T) {
	dir := newTestDirectory(t)
	renderer := new(mockRenderer)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(doc domain.Document) bool {
		return doc.Sequence == 3 &&
			doc.Timestamp == "13 Jun 2025 10:30:00 UTC" &&
			doc.GeneratedAt.Equal(fixedNow) &&
			len(doc.Topics) == 4
	})).Return([]byte("%PDF-fake"), nil)

	g := NewFileGenerator(dir, renderer, Options{
		Template: domain.DefaultTemplate(),
		Now:      func() time.Time { return fixedNow },
	})

	path, err := g.Generate(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir.Path(), "medical-report-3.pdf"), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(content))
	renderer.AssertExpectations(t)
}

func TestFileGenerator_UsesLocationAndLayout(t *testing.T) {
	dir := newTestDirectory(t)
	loc := time.FixedZone("AST", 3*60*60)

	renderer := new(mockRenderer)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(doc domain.Document) bool {
		return doc.Timestamp == "2025-06-13 13:30 AST"
	})).Return([]byte("%PDF-fake"), nil)

	g := NewFileGenerator(dir, renderer, Options{
		Location:   loc,
		TimeLayout: "2006-01-02 15:04 MST",
		Now:        func() time.Time { return fixedNow },
	})

	_, err := g.Generate(context.Background(), 1)
	require.NoError(t, err)
	renderer.AssertExpectations(t)
}

func TestFileGenerator_Failures(t *testing.T) {
	writeErr := errors.New("no space left on device")
	renderErr := errors.New("font missing")

	tests := []struct {
		name      string
		sequence  int
		setup     func(r *mockRenderer, v *mockValidator)
		writer    func(dir *filesystem.Directory) Writer
		expectErr error
	}{
		{
			name:     "render failure",
			sequence: 1,
			setup: func(r *mockRenderer, v *mockValidator) {
				r.On("Render", mock.Anything, mock.Anything).Return(nil, renderErr)
			},
			expectErr: renderErr,
		},
		{
			name:     "validation failure",
			sequence: 1,
			setup: func(r *mockRenderer, v *mockValidator) {
				r.On("Render", mock.Anything, mock.Anything).Return([]byte("junk"), nil)
				v.On("Validate", []byte("junk")).Return(render.ErrInvalidDocument)
			},
			expectErr: render.ErrInvalidDocument,
		},
		{
			name:     "write failure",
			sequence: 1,
			setup: func(r *mockRenderer, v *mockValidator) {
				r.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF-fake"), nil)
				v.On("Validate", mock.Anything).Return(nil)
			},
			writer: func(*filesystem.Directory) Writer {
				return failingWriter{err: writeErr}
			},
			expectErr: writeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newTestDirectory(t)
			renderer := new(mockRenderer)
			validator := new(mockValidator)
			tt.setup(renderer, validator)

			var writer Writer = dir
			if tt.writer != nil {
				writer = tt.writer(dir)
			}

			g := NewFileGenerator(writer, renderer, Options{Validator: validator})
			path, err := g.Generate(context.Background(), tt.sequence)

			assert.ErrorIs(t, err, tt.expectErr)
			assert.Empty(t, path)

			files, err := dir.List()
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestFileGenerator_InvalidSequence(t *testing.T) {
	g := NewFileGenerator(newTestDirectory(t), new(mockRenderer), Options{})

	_, err := g.Generate(context.Background(), 0)
	assert.Error(t, err)
}

func TestFileGenerator_ExpiredContextWritesNothing(t *testing.T) {
	dir := newTestDirectory(t)
	ctx, cancel := context.WithCancel(context.Background())

	renderer := new(mockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return([]byte("%PDF-fake"), nil)

	g := NewFileGenerator(dir, renderer, Options{})
	_, err := g.Generate(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	files, err := dir.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileGenerator_RealPDF(t *testing.T) {
	dir := newTestDirectory(t)
	g := NewFileGenerator(dir, render.NewPDFRenderer(render.DefaultPDFOptions()), Options{
		Template:  domain.DefaultTemplate(),
		Validator: render.NewPDFValidator(),
	})

	path, err := g.Generate(context.Background(), 1)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(content[:5]))
}
