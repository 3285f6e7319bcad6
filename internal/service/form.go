package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/selection"
	"github.com/go-playground/form"
)

var formDecoder = form.NewDecoder()

// WorkProgramForm is the flat field set posted by the work program form.
// Reference fields carry ids; multi-selects are repeated keys.
type WorkProgramForm struct {
	Name              string   `form:"name"`
	DepartmentID      string   `form:"department_id"`
	ProjectID         string   `form:"project_id"`
	ActivityID        string   `form:"activity_id"`
	ProcedureID       string   `form:"procedure_id"`
	TaskDescriptionID string   `form:"task_description_id"`
	ResponsibleID     string   `form:"responsible_id"`
	DeliverableIDs    []string `form:"deliverable_ids"`
	SupportIDs        []string `form:"support_ids"`

	InputsNeeded string `form:"inputs_needed"`
	Priority     string `form:"priority"`
	Complexity   string `form:"complexity"`
	Status       string `form:"status"`
	Satisfaction string `form:"satisfaction_level"`

	Month     string `form:"month"`
	WeekOf    string `form:"week_of"`
	WeekStart string `form:"week_start"`

	AssignmentDate  string `form:"assignment_date"`
	InitialDeadline string `form:"initial_deadline"`
	ActualDeadline  string `form:"actual_deadline"`

	DurationHours string `form:"duration_effort"`
	PostponeCount string `form:"nb_postpones"`
	CompletionPct string `form:"completion_percentage"`

	Field1   string `form:"champ1"`
	Field2   string `form:"champ2"`
	Comments string `form:"comments"`
}

// DecodeWorkProgramForm maps posted values onto the form struct.
func DecodeWorkProgramForm(values url.Values) (*WorkProgramForm, error) {
	var f WorkProgramForm
	if err := formDecoder.Decode(&f, values); err != nil {
		return nil, fmt.Errorf("decoding form: %w", err)
	}
	return &f, nil
}

// WorkProgram converts the form into a new, unsaved work program. Blank
// numbers read as zero; anything else that does not parse is an error.
func (f *WorkProgramForm) WorkProgram(ownerID string, now time.Time) (*domain.WorkProgram, error) {
	w := domain.NewWorkProgram(domain.CoalesceStr(f.Name, domain.DefaultProgramName), ownerID, now)

	w.DepartmentID = domain.StrPtr(f.DepartmentID)
	w.ProjectID = domain.StrPtr(f.ProjectID)
	w.ActivityID = domain.StrPtr(f.ActivityID)
	w.ProcedureID = domain.StrPtr(f.ProcedureID)
	w.TaskDescriptionID = domain.StrPtr(f.TaskDescriptionID)
	w.ResponsibleID = domain.StrPtr(f.ResponsibleID)
	w.DeliverableIDs = domain.UniqueIDs(trimAll(f.DeliverableIDs))
	w.SupportIDs = domain.UniqueIDs(trimAll(f.SupportIDs))

	w.InputsNeeded = strings.TrimSpace(f.InputsNeeded)
	if v := domain.NormalizeEnum(f.Priority); v != "" {
		w.Priority = domain.Priority(v)
	}
	if v := domain.NormalizeEnum(f.Complexity); v != "" {
		w.Complexity = domain.Complexity(v)
	}
	if v := domain.NormalizeEnum(f.Status); v != "" {
		w.Status = domain.ProgramStatus(v)
	}
	w.Satisfaction = domain.Satisfaction(domain.NormalizeEnum(f.Satisfaction))
	w.Month = domain.NormalizeEnum(f.Month)

	var err error
	if w.WeekOf, err = formInt("week_of", f.WeekOf); err != nil {
		return nil, err
	}
	if w.PostponeCount, err = formInt("nb_postpones", f.PostponeCount); err != nil {
		return nil, err
	}
	if w.DurationHours, err = formFloat("duration_effort", f.DurationHours); err != nil {
		return nil, err
	}
	if w.CompletionPct, err = formFloat("completion_percentage", f.CompletionPct); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.WeekStart) != "" {
		start, err := selection.ParseWeek(f.WeekStart)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkProgram, err)
		}
		w.WeekStart = &start
	}
	if w.AssignmentDate, err = formDate("assignment_date", f.AssignmentDate); err != nil {
		return nil, err
	}
	if w.InitialDeadline, err = formDate("initial_deadline", f.InitialDeadline); err != nil {
		return nil, err
	}
	if w.ActualDeadline, err = formDate("actual_deadline", f.ActualDeadline); err != nil {
		return nil, err
	}

	w.Field1 = f.Field1
	w.Field2 = f.Field2
	w.Comments = f.Comments
	return w, nil
}

func formInt(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a whole number", domain.ErrInvalidWorkProgram, field, s)
	}
	return n, nil
}

func formFloat(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", domain.ErrInvalidWorkProgram, field, s)
	}
	return f, nil
}

func formDate(field, s string) (*time.Time, error) {
	t, err := importer.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidWorkProgram, field, err)
	}
	return t, nil
}

func trimAll(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
