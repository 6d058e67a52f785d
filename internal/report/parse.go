// Package report turns validator XML reports into violation records.
package report

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/pdfua-remediator/internal/types"
)

// ruleElement is the local name of a failed-rule element in the report
const ruleElement = "rule"

// ParseError represents a report that is not well-formed XML
type ParseError struct {
	Message string
	Offset  int64
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("report parse error: %s (offset %d): %v", e.Message, e.Offset, e.Cause)
	}
	return fmt.Sprintf("report parse error: %s (offset %d)", e.Message, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parse extracts one record per <rule> element below the root, in document order.
// Every attribute of the element is kept verbatim. Whitespace-only input and
// documents without rules yield an empty, non-nil slice.
func Parse(xmlReport string) ([]types.ViolationRecord, error) {
	records := []types.ViolationRecord{}
	if strings.TrimSpace(xmlReport) == "" {
		return records, nil
	}

	dec := xml.NewDecoder(strings.NewReader(xmlReport))
	dec.Strict = true

	sawRoot, rootClosed := false, false
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{
				Message: "malformed XML",
				Offset:  dec.InputOffset(),
				Cause:   err,
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, &ParseError{
					Message: "element after root element",
					Offset:  dec.InputOffset(),
				}
			}
			// the root itself is never a rule; only its descendants are
			if depth > 0 && t.Name.Local == ruleElement {
				records = append(records, types.NewViolationRecord(attributes(t.Attr)))
			}
			sawRoot = true
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				msg := "text content before root element"
				if rootClosed {
					msg = "text content after root element"
				}
				return nil, &ParseError{
					Message: msg,
					Offset:  dec.InputOffset(),
				}
			}
		}
	}

	if !sawRoot {
		return nil, &ParseError{
			Message: "no root element",
			Offset:  dec.InputOffset(),
		}
	}

	return records, nil
}

// ParseFile reads and parses a saved report
func ParseFile(path string) ([]types.ViolationRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file %s: %w", path, err)
	}
	return Parse(string(content))
}

// attributes flattens element attributes into the record bag. Namespaced
// attributes are keyed "{namespace}local".
func attributes(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		key := a.Name.Local
		if a.Name.Space != "" {
			key = "{" + a.Name.Space + "}" + a.Name.Local
		}
		out[key] = a.Value
	}
	return out
}
