package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workprog/internal/cli/formatter"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/spf13/cobra"
)

func newOrgCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage departments, employees and projects",
	}

	cmd.AddCommand(
		newDepartmentCmd(app),
		newEmployeeCmd(app),
		newOrgProjectCmd(app),
	)

	return cmd
}

func newDepartmentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "department", Aliases: []string{"dept"}, Short: "Manage departments"}

	var scope string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := domain.ParseScopeType(scope)
			if err != nil {
				return err
			}
			d := &domain.Department{Name: args[0], Type: typ}
			if err := app.Org.CreateDepartment(cmd.Context(), d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created department %s (%s)\n", d.Name, formatter.TruncID(d.ID))
			return nil
		},
	}
	add.Flags().StringVar(&scope, "type", "", "Department type: internal or external")

	list := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			departments, err := app.Org.ListDepartments(cmd.Context())
			if err != nil {
				return err
			}
			if len(departments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No departments found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDepartmentList(departments))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newEmployeeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "employee", Short: "Manage employees"}

	var department string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e := &domain.Employee{Name: args[0]}
			if department != "" {
				d, err := app.Org.ResolveDepartment(ctx, department)
				if err != nil {
					return fmt.Errorf("department %q: %w", department, err)
				}
				e.DepartmentID = &d.ID
			}
			if err := app.Org.CreateEmployee(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created employee %s (%s)\n", e.Name, formatter.TruncID(e.ID))
			return nil
		},
	}
	add.Flags().StringVar(&department, "department", "", "Department (id or name)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			employees, err := app.Org.ListEmployees(ctx)
			if err != nil {
				return err
			}
			if len(employees) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No employees found.")
				return nil
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEmployeeList(employees, names))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newOrgProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}

	var scope string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := domain.ParseScopeType(scope)
			if err != nil {
				return err
			}
			p := &domain.Project{Name: args[0], Type: typ}
			if err := app.Org.CreateProject(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, formatter.TruncID(p.ID))
			return nil
		},
	}
	add.Flags().StringVar(&scope, "type", "", "Project type: internal or external")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Org.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

// resolveEmployee finds an employee by id or exact name.
func resolveEmployee(ctx context.Context, app *App, ref string) (*domain.Employee, error) {
	employees, err := app.Org.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if e.ID == ref {
			return e, nil
		}
	}
	for _, e := range employees {
		if e.Name == ref {
			return e, nil
		}
	}
	return nil, fmt.Errorf("employee %q: %w", ref, domain.ErrNotFound)
}
