package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/google/uuid"
)

type referenceService struct {
	refs     repository.ReferenceRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewReferenceService(refs repository.ReferenceRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ReferenceService {
	return &referenceService{refs: refs, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *referenceService) Create(ctx context.Context, e *domain.RefEntity) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-reference",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"kind": string(e.Kind), "name": e.Name},
		})
	}()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Key == "" {
		e.Key = domain.Slugify(e.Name)
	}
	if e.Kind == domain.KindDomain && e.DomainType == domain.ScopeUnset {
		e.DomainType = domain.ScopeInternal
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRefs := repository.NewSQLiteReferenceRepo(tx)
		if e.ParentID != nil {
			parentKind, ok := e.Kind.Parent()
			if !ok {
				return fmt.Errorf("%w: a %s has no parent", domain.ErrInvalidEntity, e.Kind)
			}
			if _, err := txRefs.GetByID(ctx, parentKind, *e.ParentID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("parent %s %q: %w", parentKind, *e.ParentID, domain.ErrUnknownReference)
				}
				return err
			}
		}
		return txRefs.Create(ctx, e)
	})
}

func (s *referenceService) Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.RefEntity, error) {
	return s.refs.GetByID(ctx, kind, id)
}

func (s *referenceService) GetByKey(ctx context.Context, kind domain.EntityKind, key string) (*domain.RefEntity, error) {
	return s.refs.GetByKey(ctx, kind, key)
}

func (s *referenceService) Resolve(ctx context.Context, kind domain.EntityKind, ref string) (*domain.RefEntity, error) {
	ref = strings.TrimSpace(ref)
	e, err := s.refs.GetByID(ctx, kind, ref)
	if !errors.Is(err, domain.ErrNotFound) {
		return e, err
	}
	e, err = s.refs.GetByKey(ctx, kind, ref)
	if !errors.Is(err, domain.ErrNotFound) {
		return e, err
	}
	return s.refs.FindByName(ctx, kind, ref)
}

func (s *referenceService) List(ctx context.Context, kind domain.EntityKind) ([]*domain.RefEntity, error) {
	return s.refs.List(ctx, kind)
}

func (s *referenceService) ListChildren(ctx context.Context, kind domain.EntityKind, parentID string) ([]*domain.RefEntity, error) {
	return s.refs.ListChildren(ctx, kind, parentID)
}

// Rename changes the display name only; the key stays stable.
func (s *referenceService) Rename(ctx context.Context, kind domain.EntityKind, id, name string) (e *domain.RefEntity, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "rename-reference",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"kind": string(kind), "id": id},
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRefs := repository.NewSQLiteReferenceRepo(tx)
		current, err := txRefs.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		current.Name = strings.TrimSpace(name)
		current.UpdatedAt = time.Now().UTC()
		if err := current.Validate(); err != nil {
			return err
		}
		if err := txRefs.Update(ctx, current); err != nil {
			return err
		}
		e = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an entity that nothing references. Child entities and work
// programs pointing at it make the delete fail with ErrDeleteRestricted.
func (s *referenceService) Delete(ctx context.Context, kind domain.EntityKind, id string) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "delete-reference",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"kind": string(kind), "id": id},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteReferenceRepo(tx).Delete(ctx, kind, id)
	})
}

func (s *referenceService) Tree(ctx context.Context) ([]*RefNode, error) {
	nodes := make(map[domain.EntityKind]map[string]*RefNode, len(domain.EntityKinds))
	var roots, orphans []*RefNode

	for _, kind := range domain.EntityKinds {
		entities, err := s.refs.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", kind, err)
		}
		nodes[kind] = make(map[string]*RefNode, len(entities))
		parentKind, hasParent := kind.Parent()
		for _, e := range entities {
			node := &RefNode{Entity: e}
			nodes[kind][e.ID] = node
			if !hasParent {
				roots = append(roots, node)
				continue
			}
			if e.ParentID != nil {
				if parent, ok := nodes[parentKind][*e.ParentID]; ok {
					parent.Children = append(parent.Children, node)
					continue
				}
			}
			orphans = append(orphans, node)
		}
	}
	return append(roots, orphans...), nil
}
