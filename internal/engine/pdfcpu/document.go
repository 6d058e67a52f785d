package pdfcpu

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jonathan/pdfua-remediator/internal/engine"
)

var errClosed = errors.New("document is closed")

type document struct {
	path string
	ctx  *model.Context
}

// Save writes the whole document. Every save starts from a fresh write context
// so one document can be saved to several paths.
func (d *document) Save(path string, mode engine.SaveMode) error {
	if d.ctx == nil {
		return &engine.SaveError{Path: path, Mode: mode, Cause: errClosed}
	}
	if mode != engine.SaveFull {
		return &engine.SaveError{Path: path, Mode: mode, Cause: fmt.Errorf("only full saves are supported")}
	}

	f, err := os.Create(path)
	if err != nil {
		return &engine.SaveError{Path: path, Mode: mode, Cause: err}
	}

	d.ctx.Write = model.NewWriteContext(d.ctx.Eol)
	if err := api.WriteContext(d.ctx, f); err != nil {
		_ = f.Close()
		return &engine.SaveError{Path: path, Mode: mode, Cause: err}
	}
	if err := f.Close(); err != nil {
		return &engine.SaveError{Path: path, Mode: mode, Cause: err}
	}
	return nil
}

// AddTags marks the document as tagged and makes sure a structure tree exists.
// An existing structure tree is kept as is.
func (d *document) AddTags(params engine.TagsParams) error {
	if d.ctx == nil {
		return &engine.TaggingError{Message: "cannot tag", Cause: errClosed}
	}
	if d.ctx.PageCount == 0 {
		return &engine.TaggingError{Message: "document has no pages"}
	}

	root, err := d.ctx.Catalog()
	if err != nil {
		return &engine.TaggingError{Message: "catalog not readable", Cause: err}
	}

	markInfo, err := d.subDict(root, "MarkInfo")
	if err != nil {
		return &engine.TaggingError{Message: "MarkInfo not readable", Cause: err}
	}
	markInfo.Update("Marked", pdftypes.Boolean(true))

	if _, found := root.Find("StructTreeRoot"); found {
		return nil
	}

	docElem := pdftypes.Dict(map[string]pdftypes.Object{
		"Type": pdftypes.Name("StructElem"),
		"S":    pdftypes.Name("Document"),
	})
	if params.Standard != "" {
		docElem["T"] = pdftypes.StringLiteral(params.Standard)
	}
	docRef, err := d.ctx.IndRefForNewObject(docElem)
	if err != nil {
		return &engine.TaggingError{Message: "cannot add structure element", Cause: err}
	}

	treeRoot := pdftypes.Dict(map[string]pdftypes.Object{
		"Type": pdftypes.Name("StructTreeRoot"),
		"K":    *docRef,
	})
	treeRef, err := d.ctx.IndRefForNewObject(treeRoot)
	if err != nil {
		return &engine.TaggingError{Message: "cannot add structure tree root", Cause: err}
	}
	docElem["P"] = *treeRef
	root.Update("StructTreeRoot", *treeRef)

	return nil
}

func (d *document) Command() engine.Command {
	return &command{doc: d}
}

func (d *document) Close() error {
	d.ctx = nil
	return nil
}

// subDict returns the dictionary stored under key in parent, creating an empty
// direct one when absent. Indirect dictionaries are resolved in place.
func (d *document) subDict(parent pdftypes.Dict, key string) (pdftypes.Dict, error) {
	obj, found := parent.Find(key)
	if !found || obj == nil {
		sub := pdftypes.NewDict()
		parent.Update(key, sub)
		return sub, nil
	}
	sub, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = pdftypes.NewDict()
		parent.Update(key, sub)
	}
	return sub, nil
}
