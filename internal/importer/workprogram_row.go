package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
)

// Spreadsheet column names of a work program row.
const (
	ColTaskDescription = "Task Description"
	ColMonth           = "Month"
	ColWeekOf          = "Week of"
	ColInputsNeeded    = "Inputs needed (If applicable)"
	ColPriority        = "Priority"
	ColComplexity      = "Complexity"
	ColAssignmentDate  = "Assignment date"
	ColDuration        = "Duration / Effort (Hrs)"
	ColInitialDeadline = "Initial Dateline"
	ColPostpones       = "Nb of Postpones"
	ColActualDeadline  = "Actual Deadline"
	ColStatus          = "Status"
	ColCompletion      = "% of completion"
	ColSatisfaction    = "Satisfaction Level"
	ColComments        = "Comments / Remarques / Problems encountered / Additionals informations"
	ColField1          = "Champ 1"
	ColField2          = "Champ 2"
	ColDepartment      = "Departments"
	ColActivity        = "Activity"
	ColProcedure       = "Task Type (Procedure)"
	ColDeliverables    = "Task Deliverable(s)"
	ColResponsible     = "Responsible"
	ColSupport         = "Support"
	ColProject         = "Project"
)

// WorkProgramRow is a parsed work program row. Reference fields still hold
// names; resolving them needs storage.
type WorkProgramRow struct {
	Name string

	Month        string
	WeekOf       int
	InputsNeeded string
	Priority     domain.Priority
	Complexity   domain.Complexity
	Status       domain.ProgramStatus
	Satisfaction domain.Satisfaction

	AssignmentDate  *time.Time
	InitialDeadline *time.Time
	ActualDeadline  *time.Time

	DurationHours float64
	PostponeCount int
	CompletionPct float64

	Comments string
	Field1   string
	Field2   string

	Department      string
	Project         string
	Activity        string
	Procedure       string
	TaskDescription string
	Responsible     string
	Deliverables    []string
	Supports        []string
}

// ProgramName returns the work program name a row targets.
func ProgramName(row Row) string {
	return domain.CoalesceStr(row.Value(ColTaskDescription), domain.DefaultProgramName)
}

// ParseWorkProgramRow converts the scalar cells of row. A malformed number
// or date fails the whole row; enum values are only lower-cased here and
// checked by validation.
func ParseWorkProgramRow(row Row) (*WorkProgramRow, error) {
	p := &WorkProgramRow{
		Name:            ProgramName(row),
		Month:           domain.NormalizeEnum(row.Value(ColMonth)),
		InputsNeeded:    row.Value(ColInputsNeeded),
		Priority:        domain.Priority(domain.CoalesceStr(domain.NormalizeEnum(row.Value(ColPriority)), string(domain.PriorityMedium))),
		Complexity:      domain.Complexity(domain.CoalesceStr(domain.NormalizeEnum(row.Value(ColComplexity)), string(domain.ComplexityMedium))),
		Status:          domain.ProgramStatus(domain.CoalesceStr(domain.NormalizeEnum(row.Value(ColStatus)), string(domain.StatusDraft))),
		Satisfaction:    domain.Satisfaction(domain.NormalizeEnum(row.Value(ColSatisfaction))),
		Comments:        row.Value(ColComments),
		Field1:          row.Value(ColField1),
		Field2:          row.Value(ColField2),
		Department:      row.Value(ColDepartment),
		Project:         row.Value(ColProject),
		Activity:        row.Value(ColActivity),
		Procedure:       row.Value(ColProcedure),
		TaskDescription: row.Value(ColTaskDescription),
		Responsible:     row.Value(ColResponsible),
		Deliverables:    SplitNames(row.Value(ColDeliverables)),
		Supports:        SplitNames(row.Value(ColSupport)),
	}

	var err error
	if p.WeekOf, err = parseInt(row, ColWeekOf); err != nil {
		return nil, err
	}
	if p.PostponeCount, err = parseInt(row, ColPostpones); err != nil {
		return nil, err
	}
	if p.DurationHours, err = parseFloat(row, ColDuration); err != nil {
		return nil, err
	}
	if p.CompletionPct, err = parseFloat(row, ColCompletion); err != nil {
		return nil, err
	}
	if p.AssignmentDate, err = parseDate(row, ColAssignmentDate); err != nil {
		return nil, err
	}
	if p.InitialDeadline, err = parseDate(row, ColInitialDeadline); err != nil {
		return nil, err
	}
	if p.ActualDeadline, err = parseDate(row, ColActualDeadline); err != nil {
		return nil, err
	}
	return p, nil
}

func parseInt(row Row, col string) (int, error) {
	s := row.Value(col)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", col, s)
	}
	return n, nil
}

func parseFloat(row Row, col string) (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(row.Value(col), "%"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", col, s)
	}
	return f, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate accepts ISO dates plus day-first slash dates.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%q is not a date", s)
}

func parseDate(row Row, col string) (*time.Time, error) {
	t, err := ParseDate(row.Value(col))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return t, nil
}
