package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/repository"
	"github.com/google/uuid"
)

type workProgramService struct {
	programs    repository.WorkProgramRepo
	departments repository.DepartmentRepo
	ownerID     string
	uow         db.UnitOfWork
	observer    UseCaseObserver
}

// NewWorkProgramService returns the work program use cases. ownerID is
// recorded on programs created without an owner.
func NewWorkProgramService(
	programs repository.WorkProgramRepo,
	departments repository.DepartmentRepo,
	ownerID string,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) WorkProgramService {
	return &workProgramService{
		programs:    programs,
		departments: departments,
		ownerID:     ownerID,
		uow:         uow,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *workProgramService) Create(ctx context.Context, w *domain.WorkProgram) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.OwnerID == "" {
		w.OwnerID = s.ownerID
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if err := w.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteWorkProgramRepo(tx).Create(ctx, w)
	})
}

// Update overwrites a stored program. The creation time and owner of the
// stored row are kept.
func (s *workProgramService) Update(ctx context.Context, w *domain.WorkProgram) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txPrograms := repository.NewSQLiteWorkProgramRepo(tx)
		current, err := txPrograms.GetByID(ctx, w.ID)
		if err != nil {
			return err
		}
		w.CreatedAt = current.CreatedAt
		if w.OwnerID == "" {
			w.OwnerID = current.OwnerID
		}
		w.UpdatedAt = time.Now().UTC()
		return txPrograms.Update(ctx, w)
	})
}

func (s *workProgramService) Get(ctx context.Context, id string) (*domain.WorkProgram, error) {
	return s.programs.GetByID(ctx, id)
}

func (s *workProgramService) List(ctx context.Context, filter repository.WorkProgramFilter) ([]*domain.WorkProgram, error) {
	return s.programs.List(ctx, filter)
}

func (s *workProgramService) Delete(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteWorkProgramRepo(tx).Delete(ctx, id)
	})
}

func (s *workProgramService) View(ctx context.Context, id string) (*WorkProgramView, error) {
	w, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &WorkProgramView{Program: w}
	if w.DepartmentID == nil {
		return view, nil
	}
	dept, err := s.departments.GetByID(ctx, *w.DepartmentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	view.Department = dept
	view.IsExternalDepartment = domain.IsExternalDepartment(dept)
	return view, nil
}

func (s *workProgramService) Submit(ctx context.Context, values url.Values) (w *domain.WorkProgram, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if w != nil {
			fields["work_program_id"] = w.ID
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "submit-work-program",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	f, err := DecodeWorkProgramForm(values)
	if err != nil {
		return nil, err
	}
	w, err = f.WorkProgram(s.ownerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
