package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
)

type hierarchyService struct {
	hierarchies repository.HierarchyRepo
	refs        repository.ReferenceRepo
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

func NewHierarchyService(
	hierarchies repository.HierarchyRepo,
	refs repository.ReferenceRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) HierarchyService {
	return &hierarchyService{
		hierarchies: hierarchies,
		refs:        refs,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *hierarchyService) Get(ctx context.Context, id string) (*domain.Hierarchy, error) {
	return s.hierarchies.GetByID(ctx, id)
}

func (s *hierarchyService) Find(ctx context.Context, ref string) (*domain.Hierarchy, error) {
	h, err := s.hierarchies.GetByID(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return s.hierarchies.FindByName(ctx, strings.TrimSpace(ref))
	}
	return h, err
}

func (s *hierarchyService) List(ctx context.Context, includeInactive bool) ([]*domain.Hierarchy, error) {
	return s.hierarchies.List(ctx, includeInactive)
}

func (s *hierarchyService) Archive(ctx context.Context, id string) error {
	return s.hierarchies.SetActive(ctx, id, false)
}

func (s *hierarchyService) Restore(ctx context.Context, id string) error {
	return s.hierarchies.SetActive(ctx, id, true)
}

func (s *hierarchyService) SyncProject(ctx context.Context, id string, projectID *string) (h *domain.Hierarchy, err error) {
	startedAt := time.Now()
	fields := map[string]any{"hierarchy_id": id, "project_id": domain.StrValue(projectID)}
	defer func() {
		if h != nil {
			fields["allowed_departments"] = len(h.AllowedDepartmentIDs)
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "sync-hierarchy-project",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txHierarchies := repository.NewSQLiteHierarchyRepo(tx)
		current, err := txHierarchies.GetByID(ctx, id)
		if err != nil {
			return err
		}

		var project *domain.Project
		var departments []domain.Department
		if projectID != nil {
			project, err = repository.NewSQLiteProjectRepo(tx).GetByID(ctx, *projectID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("project %q: %w", *projectID, domain.ErrUnknownReference)
			}
			if err != nil {
				return err
			}
			if project.Type != domain.ScopeUnset {
				departments, err = repository.NewSQLiteDepartmentRepo(tx).ListByType(ctx, project.Type)
				if err != nil {
					return err
				}
			}
		}

		current.ProjectID = projectID
		current.ApplyProjectType(project, departments)
		current.ApplyAllowedDepartments()
		current.UpdatedAt = time.Now().UTC()
		if err := txHierarchies.Update(ctx, current); err != nil {
			return err
		}
		h = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Check lists the linked entities whose parent is not linked one level up.
// Link sets are independent, so the report is advisory only.
func (s *hierarchyService) Check(ctx context.Context, id string) ([]Inconsistency, error) {
	h, err := s.hierarchies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var out []Inconsistency
	for _, kind := range domain.EntityKinds {
		parentKind, ok := kind.Parent()
		if !ok {
			continue
		}
		linkedParents := h.LinkIDs(parentKind)
		for _, entityID := range h.LinkIDs(kind) {
			e, err := s.refs.GetByID(ctx, kind, entityID)
			if err != nil {
				return nil, err
			}
			if e.ParentID == nil || slices.Contains(linkedParents, *e.ParentID) {
				continue
			}
			out = append(out, Inconsistency{
				Kind:       kind,
				EntityID:   e.ID,
				EntityName: e.Name,
				ParentKind: parentKind,
				ParentID:   *e.ParentID,
			})
		}
	}
	return out, nil
}
