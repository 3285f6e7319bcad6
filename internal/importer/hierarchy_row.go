package importer

import (
	"strings"

	"github.com/alexanderramin/workprog/internal/domain"
)

// hierarchyColumns maps each link set to its row field.
var hierarchyColumns = map[domain.EntityKind]string{
	domain.KindDomain:          "domain",
	domain.KindProcess:         "process",
	domain.KindSubprocess:      "sub_process",
	domain.KindActivity:        "activity",
	domain.KindProcedure:       "procedure",
	domain.KindDeliverable:     "deliverable",
	domain.KindTaskFormulation: "task_formulation",
}

// HierarchyColumn returns the row field holding the names for kind.
func HierarchyColumn(kind domain.EntityKind) string {
	return hierarchyColumns[kind]
}

// HierarchyRow is a parsed hierarchy aggregate row.
type HierarchyRow struct {
	Name string

	// Names lists the entity names per level, in row order.
	Names map[domain.EntityKind][]string

	// Notes is nil when the row has no notes column.
	Notes *string

	Active bool
}

// HierarchyName returns the aggregate name a row targets.
func HierarchyName(row Row) string {
	return domain.CoalesceStr(row.Value("name"), domain.DefaultHierarchyName)
}

// ParseHierarchyRow extracts the aggregate fields of row. It never fails:
// every field is optional.
func ParseHierarchyRow(row Row) *HierarchyRow {
	h := &HierarchyRow{
		Name:   HierarchyName(row),
		Names:  make(map[domain.EntityKind][]string, len(hierarchyColumns)),
		Active: ParseActive(row.Value("active")),
	}
	for _, kind := range domain.EntityKinds {
		h.Names[kind] = SplitNames(row.Value(hierarchyColumns[kind]))
	}
	if notes, ok := row.Get("notes"); ok {
		h.Notes = &notes
	}
	return h
}

// ParseActive reads an active flag. Blank means active; "1", "true", "yes",
// "y" and "x" are active and anything else is inactive.
func ParseActive(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
