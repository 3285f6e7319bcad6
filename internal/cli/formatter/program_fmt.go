package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/service"
)

const progressWidth = 10

func FormatProgramList(programs []*domain.WorkProgram, names map[string]string) string {
	rows := make([][]string, 0, len(programs))
	for _, w := range programs {
		rows = append(rows, []string{
			TruncID(w.ID),
			w.Name,
			OrDash(names[domain.StrValue(w.DepartmentID)]),
			OrDash(names[domain.StrValue(w.ResponsibleID)]),
			PriorityColor(w.Priority).Render(string(w.Priority)),
			StatusPill(w.Status),
			RenderProgress(w.CompletionPct, progressWidth),
		})
	}
	return RenderTable([]string{"ID", "NAME", "DEPARTMENT", "RESPONSIBLE", "PRIORITY", "STATUS", "DONE"}, rows)
}

// FormatProgramShow renders one work program. The extension fields are
// listed only for external departments.
func FormatProgramShow(view *service.WorkProgramView, names map[string]string) string {
	w := view.Program
	name := func(p *string) string { return OrDash(names[domain.StrValue(p)]) }
	list := func(ids []string) string {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			if n := names[id]; n != "" {
				parts = append(parts, n)
			} else {
				parts = append(parts, TruncID(id))
			}
		}
		return OrDash(strings.Join(parts, ", "))
	}

	var b strings.Builder
	kv(&b, "ID", w.ID)
	kv(&b, "Owner", OrDash(w.OwnerID))
	kv(&b, "Status", StatusPill(w.Status))
	kv(&b, "Completion", RenderProgress(w.CompletionPct, progressWidth))
	kv(&b, "Priority", PriorityColor(w.Priority).Render(string(w.Priority)))
	kv(&b, "Complexity", string(w.Complexity))
	kv(&b, "Satisfaction", OrDash(string(w.Satisfaction)))
	b.WriteString("\n")

	dept := name(w.DepartmentID)
	if view.Department != nil {
		dept += "  " + ScopeBadge(view.Department.Type)
	}
	kv(&b, "Department", dept)
	kv(&b, "Project", name(w.ProjectID))
	kv(&b, "Activity", name(w.ActivityID))
	kv(&b, "Procedure", name(w.ProcedureID))
	kv(&b, "Task", name(w.TaskDescriptionID))
	kv(&b, "Deliverables", list(w.DeliverableIDs))
	kv(&b, "Responsible", name(w.ResponsibleID))
	kv(&b, "Support", list(w.SupportIDs))
	b.WriteString("\n")

	week := OrDash(w.Month)
	if w.WeekStart != nil {
		week = fmt.Sprintf("%s, week of %s", week, w.WeekStart.Format("2006-01-02"))
	}
	kv(&b, "Schedule", week)
	kv(&b, "Assigned", DateText(w.AssignmentDate))
	kv(&b, "Initial deadline", DateText(w.InitialDeadline))
	kv(&b, "Actual deadline", DateText(w.ActualDeadline))
	kv(&b, "Effort (hrs)", strconv.FormatFloat(w.DurationHours, 'f', -1, 64))
	kv(&b, "Postponed", strconv.Itoa(w.PostponeCount))
	if w.InputsNeeded != "" {
		kv(&b, "Inputs needed", w.InputsNeeded)
	}
	if view.IsExternalDepartment {
		kv(&b, "Field 1", OrDash(w.Field1))
		kv(&b, "Field 2", OrDash(w.Field2))
	}
	if w.Comments != "" {
		kv(&b, "Comments", w.Comments)
	}
	return RenderBox(w.Name, strings.TrimRight(b.String(), "\n"))
}
