package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/alexanderramin/workprog/internal/cli/formatter"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/selection"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/spf13/cobra"
)

func newProgramCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "program",
		Aliases: []string{"wp"},
		Short:   "Manage work programs",
	}

	cmd.AddCommand(
		newProgramListCmd(app),
		newProgramShowCmd(app),
		newProgramNewCmd(app),
		newProgramImportCmd(app),
		newProgramOptionsCmd(app),
		newProgramRemoveCmd(app),
	)

	return cmd
}

func newProgramListCmd(app *App) *cobra.Command {
	var department, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var filter repository.WorkProgramFilter
			if department != "" {
				d, err := app.Org.ResolveDepartment(ctx, department)
				if err != nil {
					return fmt.Errorf("department %q: %w", department, err)
				}
				filter.DepartmentID = d.ID
			}
			if status != "" {
				filter.Status = domain.ProgramStatus(domain.NormalizeEnum(status))
			}

			programs, err := app.Programs.List(ctx, filter)
			if err != nil {
				return err
			}
			if len(programs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No work programs found.")
				return nil
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgramList(programs, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&department, "department", "", "Only programs of this department (id or name)")
	cmd.Flags().StringVar(&status, "status", "", "Only programs with this status")

	return cmd
}

func newProgramShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show REF",
		Short: "Show a work program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProgramID(ctx, app, args[0])
			if err != nil {
				return err
			}
			view, err := app.Programs.View(ctx, id)
			if err != nil {
				return err
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProgramShow(view, names))
			return nil
		},
	}
}

func newProgramNewCmd(app *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a work program from field values or an interactive form",
		Long: "Create a work program. Values are given as --set key=value using the form keys\n(" +
			strings.Join(programFormKeys, ", ") + ").\n" +
			"Reference keys accept an id, key or name. Repeat --set for list keys.\n" +
			"Without --set, an interactive form is opened when running in a terminal.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var values url.Values
			switch {
			case len(sets) > 0:
				raw, err := parseSetFlags(sets)
				if err != nil {
					return err
				}
				if values, err = resolveFormValues(ctx, app, raw); err != nil {
					return err
				}
			case app.interactive():
				var err error
				if values, err = runProgramForm(ctx, app); err != nil {
					return err
				}
			default:
				return errors.New("no values given: use --set key=value or run in a terminal")
			}

			w, err := app.Programs.Submit(ctx, values)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created work program %s (%s)\n", w.Name, formatter.TruncID(w.ID))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as key=value (repeatable)")

	return cmd
}

func newProgramImportCmd(app *App) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import work program rows from a csv, xlsx, json or yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, app, service.TargetWorkProgram, args[0], sheet)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet (defaults to WORKPROG_IMPORT_SHEET, then the first sheet)")

	return cmd
}

func newProgramOptionsCmd(app *App) *cobra.Command {
	var activity, procedure string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the choices left for dependent fields",
		Long:  "Show which procedures, deliverables and task descriptions may be picked for an activity and procedure.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var form selection.Form
			choices := make(map[selection.Field][]selection.Option)

			if activity != "" {
				a, err := resolveRef(ctx, app, domain.KindActivity, activity)
				if err != nil {
					return err
				}
				res, err := app.Selection.OnChange(ctx, form, selection.FieldActivity, a.ID)
				if err != nil {
					return err
				}
				form = res.Form
				for field, opts := range res.Choices {
					choices[field] = opts
				}
			}
			if procedure != "" {
				p, err := resolveRef(ctx, app, domain.KindProcedure, procedure)
				if err != nil {
					return err
				}
				res, err := app.Selection.OnChange(ctx, form, selection.FieldProcedure, p.ID)
				if err != nil {
					return err
				}
				for field, opts := range res.Choices {
					choices[field] = opts
				}
			}
			if len(choices) == 0 {
				return errors.New("give --activity and/or --procedure")
			}

			fields := make([]string, 0, len(choices))
			for field := range choices {
				fields = append(fields, string(field))
			}
			sort.Strings(fields)
			out := cmd.OutOrStdout()
			for _, field := range fields {
				fmt.Fprintln(out, formatter.Header(field))
				opts := choices[selection.Field(field)]
				if len(opts) == 0 {
					fmt.Fprintln(out, formatter.Dim("  (no choices)"))
				}
				for _, o := range opts {
					fmt.Fprintf(out, "  %s  %s\n", o.Label, formatter.Dim(formatter.TruncID(o.Value)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&activity, "activity", "", "Activity (id, key or name)")
	cmd.Flags().StringVar(&procedure, "procedure", "", "Procedure (id, key or name)")

	return cmd
}

func newProgramRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove REF",
		Short: "Delete a work program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProgramID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Programs.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed work program %s\n", formatter.TruncID(id))
			return nil
		},
	}
}

// programFormKeys are the keys accepted by the work program form.
var programFormKeys = []string{
	"name", "department_id", "project_id", "activity_id", "procedure_id",
	"task_description_id", "deliverable_ids", "responsible_id", "support_ids",
	"inputs_needed", "priority", "complexity", "status", "satisfaction_level",
	"month", "week_of", "week_start", "assignment_date", "initial_deadline",
	"actual_deadline", "duration_effort", "nb_postpones", "completion_percentage",
	"champ1", "champ2", "comments",
}

// parseSetFlags turns key=value pairs into form values. Keys may drop the
// _id/_ids suffix; list keys also accept comma separated names.
func parseSetFlags(sets []string) (url.Values, error) {
	values := url.Values{}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: want key=value", set)
		}
		key = canonicalFormKey(key)
		if !slices.Contains(programFormKeys, key) {
			return nil, fmt.Errorf("unknown field %q (valid: %s)", key, strings.Join(programFormKeys, ", "))
		}
		if strings.HasSuffix(key, "_ids") {
			for _, name := range importer.SplitNames(value) {
				values.Add(key, name)
			}
			continue
		}
		values.Add(key, strings.TrimSpace(value))
	}
	return values, nil
}

func canonicalFormKey(key string) string {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	switch key {
	case "department", "project", "activity", "procedure", "task_description", "responsible":
		return key + "_id"
	case "deliverables", "supports", "support":
		return strings.TrimSuffix(key, "s") + "_ids"
	}
	return key
}

// resolveFormValues replaces names and keys of referenced records by ids.
func resolveFormValues(ctx context.Context, app *App, values url.Values) (url.Values, error) {
	refKinds := map[string]domain.EntityKind{
		"activity_id":         domain.KindActivity,
		"procedure_id":        domain.KindProcedure,
		"task_description_id": domain.KindTaskFormulation,
		"deliverable_ids":     domain.KindDeliverable,
	}

	out := url.Values{}
	for key, vals := range values {
		for _, v := range vals {
			if v == "" {
				out.Add(key, v)
				continue
			}
			id, err := resolveFormValue(ctx, app, refKinds, key, v)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, fmt.Errorf("%s %q: %w", key, v, domain.ErrUnknownReference)
				}
				return nil, err
			}
			out.Add(key, id)
		}
	}
	return out, nil
}

func resolveFormValue(ctx context.Context, app *App, refKinds map[string]domain.EntityKind, key, v string) (string, error) {
	if kind, ok := refKinds[key]; ok {
		e, err := resolveRef(ctx, app, kind, v)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	}
	switch key {
	case "department_id":
		d, err := app.Org.ResolveDepartment(ctx, v)
		if err != nil {
			return "", err
		}
		return d.ID, nil
	case "project_id":
		p, err := app.Org.ResolveProject(ctx, v)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	case "responsible_id", "support_ids":
		e, err := resolveEmployee(ctx, app, v)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	}
	return v, nil
}
