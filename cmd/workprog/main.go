package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/workprog/internal/cli"
	"github.com/alexanderramin/workprog/internal/config"
	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	refRepo := repository.NewSQLiteReferenceRepo(database)
	deptRepo := repository.NewSQLiteDepartmentRepo(database)
	empRepo := repository.NewSQLiteEmployeeRepo(database)
	projRepo := repository.NewSQLiteProjectRepo(database)
	hierRepo := repository.NewSQLiteHierarchyRepo(database)
	programRepo := repository.NewSQLiteWorkProgramRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewSlogUseCaseObserver(logger)

	app := &cli.App{
		Refs:        service.NewReferenceService(refRepo, uow, observer),
		Org:         service.NewOrgService(deptRepo, empRepo, projRepo),
		Hierarchies: service.NewHierarchyService(hierRepo, refRepo, uow, observer),
		Programs:    service.NewWorkProgramService(programRepo, deptRepo, cfg.User, uow, observer),
		Imports:     service.NewImportService(cfg.User, uow, observer),
		Selection:   service.NewSelectionService(refRepo, deptRepo, empRepo, projRepo),
		Config:      cfg,
		Logger:      logger,
	}

	// Forms are only offered on an interactive terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
