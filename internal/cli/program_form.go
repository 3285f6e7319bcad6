package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/workprog/internal/cli/formatter"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/selection"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// programFormState holds the values bound to the interactive form fields.
type programFormState struct {
	Name         string
	Department   string
	Project      string
	Activity     string
	Procedure    string
	Task         string
	Deliverables []string
	Responsible  string
	Supports     []string
	Priority     string
	Complexity   string
	Status       string
	Month        string
	Week         string
	Assignment   string
	Deadline     string
	Duration     string
	Completion   string
	Field1       string
	Field2       string
	Comments     string
}

// values renders the state with the keys of the submission form.
func (s *programFormState) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			v.Set(key, value)
		}
	}
	set("name", s.Name)
	set("department_id", s.Department)
	set("project_id", s.Project)
	set("activity_id", s.Activity)
	set("procedure_id", s.Procedure)
	set("task_description_id", s.Task)
	set("responsible_id", s.Responsible)
	for _, id := range s.Deliverables {
		v.Add("deliverable_ids", id)
	}
	for _, id := range s.Supports {
		v.Add("support_ids", id)
	}
	set("priority", s.Priority)
	set("complexity", s.Complexity)
	set("status", s.Status)
	set("month", s.Month)
	set("week_start", s.Week)
	set("assignment_date", s.Assignment)
	set("initial_deadline", s.Deadline)
	set("duration_effort", s.Duration)
	set("completion_percentage", s.Completion)
	set("champ1", s.Field1)
	set("champ2", s.Field2)
	set("comments", s.Comments)
	return v
}

// toHuhOptions converts selection options; withNone prepends an empty choice.
func toHuhOptions(opts []selection.Option, withNone bool) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts)+1)
	if withNone {
		out = append(out, huh.NewOption("(none)", ""))
	}
	for _, o := range opts {
		out = append(out, huh.NewOption(o.Label, o.Value))
	}
	return out
}

// dependentChoices lists the options of field after changing trigger to the
// value behind bound. Errors leave the field without choices.
func dependentChoices(ctx context.Context, app *App, trigger, field selection.Field, bound *string, withNone bool) func() []huh.Option[string] {
	return func() []huh.Option[string] {
		res, err := app.Selection.OnChange(ctx, selection.Form{}, trigger, *bound)
		if err != nil {
			return toHuhOptions(nil, withNone)
		}
		return toHuhOptions(res.Choices[field], withNone)
	}
}

// runProgramForm collects a work program interactively.
func runProgramForm(ctx context.Context, app *App) (url.Values, error) {
	form, state, err := newProgramForm(ctx, app)
	if err != nil {
		return nil, err
	}
	if err := form.WithProgramOptions(tea.WithOutput(os.Stderr)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, errors.New("cancelled")
		}
		return nil, err
	}
	return state.values(), nil
}

// newProgramForm builds the work program form bound to a fresh state.
// Procedure, deliverable and task description choices follow the activity
// and procedure picked above them; the extension group is shown only for
// external departments.
func newProgramForm(ctx context.Context, app *App) (*huh.Form, *programFormState, error) {
	meta, err := app.Selection.FormMetadata(ctx, app.now())
	if err != nil {
		return nil, nil, err
	}
	departments, err := app.Org.ListDepartments(ctx)
	if err != nil {
		return nil, nil, err
	}
	external := make(map[string]bool, len(departments))
	for _, d := range departments {
		external[d.ID] = domain.IsExternalDepartment(d)
	}

	state := &programFormState{
		Priority:   string(domain.PriorityMedium),
		Complexity: string(domain.ComplexityMedium),
		Status:     string(domain.StatusDraft),
		Month:      meta.DefaultMonth,
		Week:       meta.DefaultWeek,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Placeholder(domain.DefaultProgramName).Value(&state.Name),
			huh.NewSelect[string]().Title("Department").Options(toHuhOptions(meta.Departments, true)...).Value(&state.Department),
			huh.NewSelect[string]().Title("Project").Options(toHuhOptions(meta.Projects, true)...).Value(&state.Project),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Activity").Options(toHuhOptions(meta.Activities, true)...).Value(&state.Activity),
			huh.NewSelect[string]().Title("Procedure").
				OptionsFunc(dependentChoices(ctx, app, selection.FieldActivity, selection.FieldProcedure, &state.Activity, true), &state.Activity).
				Value(&state.Procedure),
			huh.NewMultiSelect[string]().Title("Deliverables").
				OptionsFunc(dependentChoices(ctx, app, selection.FieldActivity, selection.FieldDeliverables, &state.Activity, false), &state.Activity).
				Value(&state.Deliverables),
			huh.NewSelect[string]().Title("Task description").
				OptionsFunc(dependentChoices(ctx, app, selection.FieldProcedure, selection.FieldTaskDescription, &state.Procedure, true), &state.Procedure).
				Value(&state.Task),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Responsible").Options(toHuhOptions(meta.Employees, true)...).Value(&state.Responsible),
			huh.NewMultiSelect[string]().Title("Support").Options(toHuhOptions(meta.Employees, false)...).Value(&state.Supports),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Priority").Options(toHuhOptions(meta.Enums.Priority, false)...).Value(&state.Priority),
			huh.NewSelect[string]().Title("Complexity").Options(toHuhOptions(meta.Enums.Complexity, false)...).Value(&state.Complexity),
			huh.NewSelect[string]().Title("Status").Options(toHuhOptions(meta.Enums.Status, false)...).Value(&state.Status),
			huh.NewSelect[string]().Title("Month").Options(toHuhOptions(meta.Months, true)...).Value(&state.Month),
			huh.NewSelect[string]().Title("Week").Options(toHuhOptions(meta.Weeks, true)...).Value(&state.Week).Height(8),
		),
		huh.NewGroup(
			dateInput("Assignment date", &state.Assignment),
			dateInput("Initial deadline", &state.Deadline),
			huh.NewInput().Title("Effort (hours)").Placeholder("0").Value(&state.Duration).Validate(validateNonNegativeFloat),
			huh.NewInput().Title("Completion %").Placeholder("0").Value(&state.Completion).Validate(validatePercent),
			huh.NewText().Title("Comments").Value(&state.Comments),
		),
		huh.NewGroup(
			huh.NewNote().Title("External department").Description("Extension fields apply to external departments."),
			huh.NewInput().Title("Field 1").Value(&state.Field1),
			huh.NewInput().Title("Field 2").Value(&state.Field2),
		).WithHideFunc(func() bool { return !external[state.Department] }),
	).
		WithTheme(workprogHuhTheme()).
		WithKeyMap(programFormKeyMap())

	return form, state, nil
}

func programFormKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2025-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

// validateOptionalDate accepts blank or any date layout the importer reads.
func validateOptionalDate(s string) error {
	if _, err := importer.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

func validatePercent(s string) error {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 100 {
		return fmt.Errorf("enter a percentage between 0 and 100")
	}
	return nil
}

func workprogHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
