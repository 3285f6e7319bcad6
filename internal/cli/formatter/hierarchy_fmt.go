package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/service"
)

func FormatHierarchyList(hierarchies []*domain.Hierarchy, names map[string]string) string {
	rows := make([][]string, 0, len(hierarchies))
	for _, h := range hierarchies {
		linked := 0
		for _, ids := range h.Links {
			linked += len(ids)
		}
		rows = append(rows, []string{
			TruncID(h.ID),
			h.Name,
			OrDash(names[domain.StrValue(h.DepartmentID)]),
			OrDash(names[domain.StrValue(h.ProjectID)]),
			fmt.Sprintf("%d", linked),
			ActivePill(h.Active),
		})
	}
	return RenderTable([]string{"ID", "NAME", "DEPARTMENT", "PROJECT", "LINKS", "STATE"}, rows)
}

// HierarchyShowData carries everything the detail view renders. Names maps
// entity, department and project ids to display names.
type HierarchyShowData struct {
	Hierarchy *domain.Hierarchy
	Names     map[string]string
	Issues    []service.Inconsistency
	Checked   bool
}

func FormatHierarchyShow(data HierarchyShowData) string {
	h := data.Hierarchy
	name := func(id string) string {
		if n, ok := data.Names[id]; ok {
			return n
		}
		return TruncID(id)
	}
	joined := func(ids []string) string {
		if len(ids) == 0 {
			return Dim("-")
		}
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, name(id))
		}
		return strings.Join(parts, ", ")
	}

	var b strings.Builder
	kv(&b, "ID", h.ID)
	kv(&b, "State", ActivePill(h.Active))
	kv(&b, "Department", OrDash(data.Names[domain.StrValue(h.DepartmentID)]))
	kv(&b, "Project", OrDash(data.Names[domain.StrValue(h.ProjectID)]))
	kv(&b, "Allowed depts", joined(h.AllowedDepartmentIDs))
	b.WriteString("\n")
	for _, kind := range domain.EntityKinds {
		kv(&b, kind.Label(), joined(h.LinkIDs(kind)))
	}
	if h.Notes != "" {
		b.WriteString("\n")
		kv(&b, "Notes", h.Notes)
	}
	if data.Checked {
		b.WriteString("\n")
		b.WriteString(FormatInconsistencies(data.Issues, data.Names))
	}
	return RenderBox(h.Name, strings.TrimRight(b.String(), "\n"))
}

// FormatInconsistencies lists linked entities whose parent is not linked.
func FormatInconsistencies(issues []service.Inconsistency, names map[string]string) string {
	if len(issues) == 0 {
		return StyleGreen.Render("✔ Every linked entity has its parent linked")
	}
	var b strings.Builder
	b.WriteString(StyleYellowBold.Render(fmt.Sprintf("%d linked entities miss their parent:", len(issues))))
	for _, is := range issues {
		parent := names[is.ParentID]
		if parent == "" {
			parent = TruncID(is.ParentID)
		}
		fmt.Fprintf(&b, "\n  %s %s %s %s %s",
			StyleYellow.Render("!"), is.Kind.Label(), Bold(is.EntityName),
			Dim("belongs to "+is.ParentKind.Label()), parent)
	}
	return b.String()
}
