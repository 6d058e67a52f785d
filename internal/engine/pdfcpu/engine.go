// Package pdfcpu implements the document engine on top of github.com/pdfcpu/pdfcpu.
package pdfcpu

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jonathan/pdfua-remediator/internal/engine"
)

var disableConfigDir sync.Once

// Engine opens PDFs into in-memory pdfcpu contexts
type Engine struct{}

// New returns an engine. pdfcpu's on-disk config directory is never created.
func New() *Engine {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Engine{}
}

// OpenDoc reads and validates a PDF in relaxed mode
func (e *Engine) OpenDoc(path, password string) (engine.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &engine.OpenError{Path: path, Cause: err}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return nil, &engine.OpenError{Path: path, Cause: err}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, &engine.OpenError{Path: path, Cause: fmt.Errorf("invalid PDF: %w", err)}
	}

	return &document{path: path, ctx: ctx}, nil
}

// CreateMemStream returns a fresh payload stream
func (e *Engine) CreateMemStream() engine.MemStream {
	return engine.NewMemStream()
}
