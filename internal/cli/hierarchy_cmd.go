package cli

import (
	"fmt"

	"github.com/alexanderramin/workprog/internal/cli/formatter"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/spf13/cobra"
)

func newHierarchyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hierarchy",
		Aliases: []string{"hier"},
		Short:   "Manage hierarchy aggregate entries",
	}

	cmd.AddCommand(
		newHierarchyListCmd(app),
		newHierarchyShowCmd(app),
		newHierarchyImportCmd(app),
		newHierarchySyncProjectCmd(app),
		newHierarchyArchiveCmd(app),
		newHierarchyRestoreCmd(app),
	)

	return cmd
}

func newHierarchyListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hierarchy entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entries, err := app.Hierarchies.List(ctx, all)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hierarchy entries found.")
				return nil
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHierarchyList(entries, names))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived entries")

	return cmd
}

func newHierarchyShowCmd(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "show REF",
		Short: "Show a hierarchy entry with its linked entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveHierarchyID(ctx, app, args[0])
			if err != nil {
				return err
			}
			h, err := app.Hierarchies.Get(ctx, id)
			if err != nil {
				return err
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			data := formatter.HierarchyShowData{Hierarchy: h, Names: names, Checked: check}
			if check {
				if data.Issues, err = app.Hierarchies.Check(ctx, id); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatHierarchyShow(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report linked entities whose parent is not linked")

	return cmd
}

func newHierarchyImportCmd(app *App) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import hierarchy rows from a csv, xlsx, json or yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, app, service.TargetHierarchy, args[0], sheet)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet (defaults to WORKPROG_IMPORT_SHEET, then the first sheet)")

	return cmd
}

func runImport(cmd *cobra.Command, app *App, target service.ImportTarget, path, sheet string) error {
	if sheet == "" {
		sheet = app.Config.ImportSheet
	}
	res, err := app.Imports.ImportFile(cmd.Context(), target, path, importer.LoadOptions{Sheet: sheet})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
	return nil
}

func newHierarchySyncProjectCmd(app *App) *cobra.Command {
	var project string
	var clearProject bool

	cmd := &cobra.Command{
		Use:   "sync-project REF",
		Short: "Set the project of an entry and recompute its allowed departments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if project == "" && !clearProject {
				return fmt.Errorf("either --project or --clear is required")
			}
			if project != "" && clearProject {
				return fmt.Errorf("--project and --clear are mutually exclusive")
			}
			id, err := resolveHierarchyID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var projectID *string
			if project != "" {
				p, err := app.Org.ResolveProject(ctx, project)
				if err != nil {
					return fmt.Errorf("project %q: %w", project, err)
				}
				projectID = &p.ID
			}

			h, err := app.Hierarchies.SyncProject(ctx, id, projectID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s: %d allowed departments\n", h.Name, len(h.AllowedDepartmentIDs))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project (id or name)")
	cmd.Flags().BoolVar(&clearProject, "clear", false, "Remove the project and its allowed departments")

	return cmd
}

func newHierarchyArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive REF",
		Short: "Mark a hierarchy entry inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveHierarchyID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Hierarchies.Archive(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", args[0])
			return nil
		},
	}
}

func newHierarchyRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore REF",
		Short: "Mark an archived hierarchy entry active again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveHierarchyID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Hierarchies.Restore(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", args[0])
			return nil
		},
	}
}
