package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
)

// nameIndex maps every reference entity, department, employee and project id
// to its display name.
func nameIndex(ctx context.Context, app *App) (map[string]string, error) {
	names := make(map[string]string)
	for _, kind := range domain.EntityKinds {
		entities, err := app.Refs.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			names[e.ID] = e.Name
		}
	}
	departments, err := app.Org.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	employees, err := app.Org.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	projects, err := app.Org.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

// resolveProgramID accepts a full id, an unambiguous id prefix or an exact
// program name.
func resolveProgramID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("work program ID is required")
	}
	programs, err := app.Programs.List(ctx, repository.WorkProgramFilter{})
	if err != nil {
		return "", err
	}

	for _, w := range programs {
		if w.ID == input {
			return w.ID, nil
		}
	}
	var matches []string
	for _, w := range programs {
		if strings.HasPrefix(w.ID, input) {
			matches = append(matches, w.ID)
		}
	}
	if len(matches) == 0 {
		for _, w := range programs {
			if w.Name == input {
				matches = append(matches, w.ID)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("work program %q: %w", input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("work program %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveHierarchyID accepts a full id, an unambiguous id prefix or an exact
// hierarchy name, archived entries included.
func resolveHierarchyID(ctx context.Context, app *App, input string) (string, error) {
	if h, err := app.Hierarchies.Find(ctx, input); err == nil {
		return h.ID, nil
	}
	all, err := app.Hierarchies.List(ctx, true)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, h := range all {
		if strings.HasPrefix(h.ID, input) {
			matches = append(matches, h.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("hierarchy %q: %w", input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("hierarchy ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveRef resolves an entity of kind by id, key or name, falling back to
// an unambiguous id prefix.
func resolveRef(ctx context.Context, app *App, kind domain.EntityKind, input string) (*domain.RefEntity, error) {
	if e, err := app.Refs.Resolve(ctx, kind, input); err == nil {
		return e, nil
	}
	entities, err := app.Refs.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	var match *domain.RefEntity
	for _, e := range entities {
		if strings.HasPrefix(e.ID, input) {
			if match != nil {
				return nil, fmt.Errorf("%s ID prefix %q is ambiguous", kind, input)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%s %q: %w", kind.Label(), input, domain.ErrNotFound)
	}
	return match, nil
}
