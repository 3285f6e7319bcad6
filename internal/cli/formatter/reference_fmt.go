package formatter

import (
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/service"
)

// FormatRefList renders the entities of one kind. Parent names are looked
// up in names by id.
func FormatRefList(entities []*domain.RefEntity, names map[string]string) string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		parent := ""
		if e.ParentID != nil {
			parent = names[*e.ParentID]
		}
		row := []string{TruncID(e.ID), e.Key, e.Name, OrDash(parent)}
		if e.Kind == domain.KindDomain {
			row[3] = ScopeBadge(e.DomainType)
		}
		rows = append(rows, row)
	}
	last := "PARENT"
	if len(entities) > 0 && entities[0].Kind == domain.KindDomain {
		last = "TYPE"
	}
	return RenderTable([]string{"ID", "KEY", "NAME", last}, rows)
}

// FormatRefTree renders the reference hierarchy with each entity's kind as
// its badge.
func FormatRefTree(roots []*service.RefNode) string {
	var items []TreeItem
	var walk func(nodes []*service.RefNode, level int)
	walk = func(nodes []*service.RefNode, level int) {
		for i, n := range nodes {
			items = append(items, TreeItem{
				Title:  n.Entity.Name,
				Level:  level,
				IsLast: i == len(nodes)-1,
				Detail: n.Entity.Kind.Label(),
			})
			walk(n.Children, level+1)
		}
	}
	walk(roots, 0)
	return RenderTree(items)
}
