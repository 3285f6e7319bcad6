package cli

import (
	"fmt"

	"github.com/alexanderramin/workprog/internal/cli/formatter"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/spf13/cobra"
)

func newRefCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ref",
		Short: "Manage hierarchy reference entities",
		Long: "Reference entities form the workflow hierarchy: domain > process > subprocess > activity,\n" +
			"with procedures and deliverables under an activity and task formulations under a procedure.",
	}

	cmd.AddCommand(
		newRefAddCmd(app),
		newRefListCmd(app),
		newRefRenameCmd(app),
		newRefRemoveCmd(app),
		newRefTreeCmd(app),
	)

	return cmd
}

func newRefAddCmd(app *App) *cobra.Command {
	var parent, scope string

	cmd := &cobra.Command{
		Use:   "add KIND NAME",
		Short: "Create a reference entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := domain.ParseEntityKind(args[0])
			if err != nil {
				return err
			}

			e := &domain.RefEntity{Kind: kind, Name: args[1]}
			if parent != "" {
				parentKind, ok := kind.Parent()
				if !ok {
					return fmt.Errorf("a %s has no parent", kind)
				}
				p, err := resolveRef(ctx, app, parentKind, parent)
				if err != nil {
					return err
				}
				e.ParentID = &p.ID
			}
			if scope != "" {
				if kind != domain.KindDomain {
					return fmt.Errorf("--type only applies to domains")
				}
				if e.DomainType, err = domain.ParseScopeType(scope); err != nil {
					return err
				}
			}

			if err := app.Refs.Create(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s [%s]\n", kind.Label(), e.Name, e.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent entity (id, key or name)")
	cmd.Flags().StringVar(&scope, "type", "", "Domain type: internal or external")

	return cmd
}

func newRefListCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "list KIND",
		Short: "List reference entities of one kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := domain.ParseEntityKind(args[0])
			if err != nil {
				return err
			}

			var entities []*domain.RefEntity
			if parent != "" {
				parentKind, ok := kind.Parent()
				if !ok {
					return fmt.Errorf("a %s has no parent", kind)
				}
				p, err := resolveRef(ctx, app, parentKind, parent)
				if err != nil {
					return err
				}
				entities, err = app.Refs.ListChildren(ctx, kind, p.ID)
				if err != nil {
					return err
				}
			} else if entities, err = app.Refs.List(ctx, kind); err != nil {
				return err
			}

			if len(entities) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s entities found.\n", kind.Label())
				return nil
			}
			names, err := nameIndex(ctx, app)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRefList(entities, names))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Only list children of this parent (id, key or name)")

	return cmd
}

func newRefRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename KIND REF NAME",
		Short: "Rename a reference entity, keeping its key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := domain.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			e, err := resolveRef(ctx, app, kind, args[1])
			if err != nil {
				return err
			}
			renamed, err := app.Refs.Rename(ctx, kind, e.ID, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s %s to %s\n", kind.Label(), e.Name, renamed.Name)
			return nil
		},
	}
}

func newRefRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove KIND REF",
		Short: "Delete a reference entity that nothing depends on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := domain.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			e, err := resolveRef(ctx, app, kind, args[1])
			if err != nil {
				return err
			}
			if err := app.Refs.Delete(ctx, kind, e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", kind.Label(), e.Name)
			return nil
		},
	}
}

func newRefTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the whole reference hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := app.Refs.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reference entities found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRefTree(roots))
			return nil
		},
	}
}
