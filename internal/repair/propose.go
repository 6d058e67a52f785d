package repair

import (
	"github.com/jonathan/pdfua-remediator/internal/types"
)

// SupportedSpecification is the only standard the planner has clause mappings for
const SupportedSpecification = "ISO 14289-1:2014"

// Action names understood by the document engine
const (
	ActionSetPDFUAStandard   = "set_pdf_ua_standard"
	ActionSetDisplayDocTitle = "set_display_doc_title"
	ActionSetLanguage        = "set_language"
)

// DefaultLanguage is the natural-language tag applied for a missing /Lang
const DefaultLanguage = "en-US"

// LangScopeMetadata is the engine scope code for document-level metadata only
const LangScopeMetadata = 0

// clauseFixes maps an ISO 14289-1 clause to the action that resolves it
var clauseFixes = map[string]func() types.FixAction{
	"5": func() types.FixAction {
		return types.NewFixAction(ActionSetPDFUAStandard,
			types.ActionParam{Name: "part_number", Value: types.IntValue(1)},
		)
	},
	"7.1": func() types.FixAction {
		return types.NewFixAction(ActionSetDisplayDocTitle)
	},
	"7.2": func() types.FixAction {
		return types.NewFixAction(ActionSetLanguage,
			types.ActionParam{Name: "lang", Value: types.StringValue(DefaultLanguage)},
			types.ActionParam{Name: "apply_lang_to", Value: types.IntValue(LangScopeMetadata)},
		)
	},
}

// ProposeFixes builds an action plan from violation records. Records for other
// standards, unknown clauses and records missing either key are skipped. Each
// action appears at most once, in the order its first violation was seen.
func ProposeFixes(records []types.ViolationRecord) *types.ActionPlan {
	plan := &types.ActionPlan{Actions: make([]types.FixAction, 0)}
	planned := make(map[string]bool)

	for _, rec := range records {
		if rec.Specification != SupportedSpecification {
			continue
		}
		fix, ok := clauseFixes[rec.Clause]
		if !ok {
			continue
		}
		action := fix()
		if planned[action.Name] {
			continue
		}
		planned[action.Name] = true
		plan.Actions = append(plan.Actions, action)
	}

	return plan
}

// Actionable reports whether the planner has a fix for the record
func Actionable(rec types.ViolationRecord) bool {
	if rec.Specification != SupportedSpecification {
		return false
	}
	_, ok := clauseFixes[rec.Clause]
	return ok
}
