package formatter

import "github.com/alexanderramin/workprog/internal/domain"

func FormatDepartmentList(departments []*domain.Department) string {
	rows := make([][]string, 0, len(departments))
	for _, d := range departments {
		rows = append(rows, []string{TruncID(d.ID), d.Name, ScopeBadge(d.Type)})
	}
	return RenderTable([]string{"ID", "NAME", "TYPE"}, rows)
}

func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{TruncID(p.ID), p.Name, ScopeBadge(p.Type)})
	}
	return RenderTable([]string{"ID", "NAME", "TYPE"}, rows)
}

// FormatEmployeeList renders employees with their department name.
func FormatEmployeeList(employees []*domain.Employee, names map[string]string) string {
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, []string{TruncID(e.ID), e.Name, OrDash(names[domain.StrValue(e.DepartmentID)])})
	}
	return RenderTable([]string{"ID", "NAME", "DEPARTMENT"}, rows)
}
