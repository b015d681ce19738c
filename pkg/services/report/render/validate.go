package render

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrInvalidDocument = errors.New("invalid pdf document")

var disableConfigDir sync.Once

// PDFValidator parses rendered documents with pdfcpu in relaxed mode.
type PDFValidator struct{}

func NewPDFValidator() *PDFValidator {
	// keep pdfcpu from creating a config dir under $HOME
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFValidator{}
}

func (v *PDFValidator) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
