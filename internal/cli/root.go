package cli

import (
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/config"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Refs        service.ReferenceService
	Org         service.OrgService
	Hierarchies service.HierarchyService
	Programs    service.WorkProgramService
	Imports     service.ImportService
	Selection   service.SelectionService

	Config config.Config
	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal; forms are only
	// offered when it is.
	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "workprog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "workprog",
		Short:         "Workflow hierarchy and work program tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	root.AddCommand(
		newRefCmd(app),
		newOrgCmd(app),
		newHierarchyCmd(app),
		newProgramCmd(app),
		newServeCmd(app),
	)

	return root
}

// normalizeFlagName lets spreadsheet-style snake_case flags such as
// --task_description map onto their kebab-case names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
