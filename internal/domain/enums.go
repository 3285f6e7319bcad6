package domain

import "strings"

// ScopeType tells whether a domain, department or project type is internal
// to the organisation or facing an external party.
type ScopeType string

const (
	ScopeUnset    ScopeType = ""
	ScopeInternal ScopeType = "internal"
	ScopeExternal ScopeType = "external"
)

// ValidScopeTypes is the canonical set of accepted scope strings.
var ValidScopeTypes = map[string]bool{
	"internal": true, "external": true,
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

type ProgramStatus string

const (
	StatusDraft     ProgramStatus = "draft"
	StatusOngoing   ProgramStatus = "ongoing"
	StatusDone      ProgramStatus = "done"
	StatusCancelled ProgramStatus = "cancelled"
)

// Satisfaction is optional; SatisfactionUnset means no level was recorded.
type Satisfaction string

const (
	SatisfactionUnset  Satisfaction = ""
	SatisfactionLow    Satisfaction = "low"
	SatisfactionMedium Satisfaction = "medium"
	SatisfactionHigh   Satisfaction = "high"
)

// EnumValue is one recognised value of an enumerated field with its display label.
type EnumValue struct {
	Value string
	Label string
}

var (
	PriorityValues = []EnumValue{
		{string(PriorityLow), "Low"},
		{string(PriorityMedium), "Medium"},
		{string(PriorityHigh), "High"},
	}
	ComplexityValues = []EnumValue{
		{string(ComplexityLow), "Low"},
		{string(ComplexityMedium), "Medium"},
		{string(ComplexityHigh), "High"},
	}
	StatusValues = []EnumValue{
		{string(StatusDraft), "Draft"},
		{string(StatusOngoing), "Ongoing"},
		{string(StatusDone), "Done"},
		{string(StatusCancelled), "Cancelled"},
	}
	SatisfactionValues = []EnumValue{
		{string(SatisfactionLow), "Low"},
		{string(SatisfactionMedium), "Medium"},
		{string(SatisfactionHigh), "High"},
	}
)

// NormalizeEnum lower-cases and trims an imported enumeration value.
func NormalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
