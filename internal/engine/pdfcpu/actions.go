package pdfcpu

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"text/template"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jonathan/pdfua-remediator/internal/types"
)

// langScopeMetadata is the only apply_lang_to scope this engine implements:
// the document-level /Lang entry.
const langScopeMetadata = 0

type prepareFunc func(action types.FixAction) (func(ctx *model.Context) error, error)

var actionCatalog = map[string]prepareFunc{
	"set_pdf_ua_standard":   prepareSetPDFUAStandard,
	"set_display_doc_title": prepareSetDisplayDocTitle,
	"set_language":          prepareSetLanguage,
}

func prepareSetPDFUAStandard(action types.FixAction) (func(ctx *model.Context) error, error) {
	part, err := intParam(action, "part_number")
	if err != nil {
		return nil, err
	}
	if part < 1 {
		return nil, fmt.Errorf("part_number must be positive, got %d", part)
	}

	return func(ctx *model.Context) error {
		root, err := ctx.Catalog()
		if err != nil {
			return err
		}
		xmp, err := renderXMP(xmpData{Part: part, Title: ctx.Title})
		if err != nil {
			return err
		}

		sd := pdftypes.StreamDict{Dict: pdftypes.NewDict(), Content: xmp}
		sd.InsertName("Type", "Metadata")
		sd.InsertName("Subtype", "XML")
		if err := sd.Encode(); err != nil {
			return fmt.Errorf("encode metadata stream: %w", err)
		}
		ref, err := ctx.IndRefForNewObject(sd)
		if err != nil {
			return err
		}
		root.Update("Metadata", *ref)
		return nil
	}, nil
}

func prepareSetDisplayDocTitle(_ types.FixAction) (func(ctx *model.Context) error, error) {
	return func(ctx *model.Context) error {
		root, err := ctx.Catalog()
		if err != nil {
			return err
		}
		doc := &document{ctx: ctx}
		prefs, err := doc.subDict(root, "ViewerPreferences")
		if err != nil {
			return err
		}
		prefs.Update("DisplayDocTitle", pdftypes.Boolean(true))
		return nil
	}, nil
}

func prepareSetLanguage(action types.FixAction) (func(ctx *model.Context) error, error) {
	lang, err := stringParam(action, "lang")
	if err != nil {
		return nil, err
	}
	if lang == "" {
		return nil, fmt.Errorf("lang must not be empty")
	}
	scope, err := intParam(action, "apply_lang_to")
	if err != nil {
		return nil, err
	}
	if scope != langScopeMetadata {
		return nil, fmt.Errorf("apply_lang_to %d is not supported", scope)
	}

	return func(ctx *model.Context) error {
		root, err := ctx.Catalog()
		if err != nil {
			return err
		}
		root.Update("Lang", pdftypes.StringLiteral(lang))
		return nil
	}, nil
}

func intParam(action types.FixAction, name string) (int64, error) {
	v, ok := action.Param(name)
	if !ok {
		return 0, fmt.Errorf("missing param %q", name)
	}
	n, ok := v.Int()
	if !ok {
		return 0, fmt.Errorf("param %q must be an integer", name)
	}
	return n, nil
}

func stringParam(action types.FixAction, name string) (string, error) {
	v, ok := action.Param(name)
	if !ok {
		return "", fmt.Errorf("missing param %q", name)
	}
	if v.Kind() != types.ParamString {
		return "", fmt.Errorf("param %q must be a string", name)
	}
	return v.String(), nil
}

type xmpData struct {
	Part  int64
	Title string
}

var xmpTemplate = template.Must(template.New("xmp").Funcs(template.FuncMap{
	"xml": func(s string) (string, error) {
		var buf bytes.Buffer
		if err := xml.EscapeText(&buf, []byte(s)); err != nil {
			return "", err
		}
		return buf.String(), nil
	},
}).Parse(`<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:pdfuaid="http://www.aiim.org/pdfua/ns/id/">
   <pdfuaid:part>{{.Part}}</pdfuaid:part>
  </rdf:Description>
{{- if .Title}}
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <dc:title><rdf:Alt><rdf:li xml:lang="x-default">{{xml .Title}}</rdf:li></rdf:Alt></dc:title>
  </rdf:Description>
{{- end}}
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`))

func renderXMP(data xmpData) ([]byte, error) {
	var buf bytes.Buffer
	if err := xmpTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render XMP: %w", err)
	}
	return buf.Bytes(), nil
}
