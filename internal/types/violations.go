// Package types provides type definitions for structured data used throughout the remediation pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Report attribute names the planner reads. Every other attribute is opaque.
const (
	AttrSpecification = "specification"
	AttrClause        = "clause"
)

// ViolationRecord is one failed rule from a validation report.
// Specification and Clause are lifted out of Attributes; a missing attribute
// leaves the field empty, which never matches a known clause.
type ViolationRecord struct {
	Specification string            `json:"specification"`
	Clause        string            `json:"clause"`
	Attributes    map[string]string `json:"attributes"`
}

// NewViolationRecord builds a record from the full attribute set of a rule.
func NewViolationRecord(attrs map[string]string) ViolationRecord {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return ViolationRecord{
		Specification: attrs[AttrSpecification],
		Clause:        attrs[AttrClause],
		Attributes:    attrs,
	}
}

// Attr returns a raw report attribute.
func (r ViolationRecord) Attr(name string) (string, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Violations represents the outcome of one validation pass over a file
type Violations struct {
	Path       string            `json:"path"`
	Compliant  bool              `json:"compliant"`
	Violations []ViolationRecord `json:"violations"`
}

// ViolationsReport is the multi-file output of the validate command
type ViolationsReport struct {
	Files []Violations `json:"files"`
}
