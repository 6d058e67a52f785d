// Package schemas holds the JSON Schemas for the artifacts this tool reads and writes.
package schemas

import _ "embed"

// FixActions is the schema for an action batch (actions.json)
//
//go:embed fix_actions.schema.json
var FixActions string

// Violations is the schema for the validate command's summary output
//
//go:embed violations.schema.json
var Violations string
