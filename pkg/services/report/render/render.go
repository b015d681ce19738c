package render

import (
	"context"

	"github.com/de-tools/medical-reports/pkg/models/domain"
)

// Renderer turns a document into the bytes of a file.
type Renderer interface {
	Render(ctx context.Context, doc domain.Document) ([]byte, error)
}

// Validator checks rendered bytes before they are published.
type Validator interface {
	Validate(data []byte) error
}
