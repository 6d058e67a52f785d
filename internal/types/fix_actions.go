// Package types provides type definitions for structured data used throughout the remediation pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParamKind tells which member of a ParamValue is set
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamInt
)

// ParamValue is the value of an action parameter: either a string or an integer.
// It serializes to a bare JSON string or number.
type ParamValue struct {
	kind ParamKind
	str  string
	num  int64
}

// StringValue wraps a string parameter value
func StringValue(s string) ParamValue {
	return ParamValue{kind: ParamString, str: s}
}

// IntValue wraps an integer parameter value
func IntValue(n int64) ParamValue {
	return ParamValue{kind: ParamInt, num: n}
}

// Kind reports which member is set
func (v ParamValue) Kind() ParamKind { return v.kind }

// String returns the string member, or the decimal form of an integer
func (v ParamValue) String() string {
	if v.kind == ParamInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// Int returns the integer member; ok is false for string values
func (v ParamValue) Int() (n int64, ok bool) {
	if v.kind != ParamInt {
		return 0, false
	}
	return v.num, true
}

// MarshalJSON implements json.Marshaler
func (v ParamValue) MarshalJSON() ([]byte, error) {
	if v.kind == ParamInt {
		return []byte(strconv.FormatInt(v.num, 10)), nil
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("param value must be a string or a number: %w", err)
	}
	n, err := num.Int64()
	if err != nil {
		return fmt.Errorf("param value %s is not an integer", num)
	}
	*v = IntValue(n)
	return nil
}

// ActionParam is one named parameter of a fix action
type ActionParam struct {
	Name  string     `json:"name"`
	Value ParamValue `json:"value"`
}

// FixAction represents a single remediation command understood by the document engine.
// Two actions with the same Name are the same fix regardless of their params.
type FixAction struct {
	Name   string        `json:"name"`
	Params []ActionParam `json:"params,omitempty"`
}

// NewFixAction builds an action; params are copied so the caller keeps no alias.
func NewFixAction(name string, params ...ActionParam) FixAction {
	action := FixAction{Name: name}
	if len(params) > 0 {
		action.Params = append([]ActionParam(nil), params...)
	}
	return action
}

// Param looks up a parameter by name
func (a FixAction) Param(name string) (ParamValue, bool) {
	for _, p := range a.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return ParamValue{}, false
}

// ActionPlan is the envelope submitted to the engine command interface
type ActionPlan struct {
	Actions []FixAction `json:"actions"`
}

// Empty reports whether the plan has nothing to submit
func (p *ActionPlan) Empty() bool {
	return p == nil || len(p.Actions) == 0
}

// Names returns the action names in plan order
func (p *ActionPlan) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		names = append(names, a.Name)
	}
	return names
}
