package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
	"github.com/alexanderramin/workprog/internal/domain"
)

// SQLiteWorkProgramRepo implements WorkProgramRepo.
type SQLiteWorkProgramRepo struct {
	db db.DBTX
}

func NewSQLiteWorkProgramRepo(conn db.DBTX) *SQLiteWorkProgramRepo {
	return &SQLiteWorkProgramRepo{db: conn}
}

const workProgramColumns = `SELECT id, name, owner_id,
	department_id, project_id, activity_id, procedure_id, task_description_id, responsible_id,
	inputs_needed, priority, complexity, status, satisfaction,
	month, week_of, week_start,
	assignment_date, initial_deadline, actual_deadline,
	duration_hours, postpone_count, completion_pct,
	field1, field2, comments, created_at, updated_at
	FROM work_programs`

func (r *SQLiteWorkProgramRepo) Create(ctx context.Context, w *domain.WorkProgram) error {
	query := `INSERT INTO work_programs (id, name, owner_id,
		department_id, project_id, activity_id, procedure_id, task_description_id, responsible_id,
		inputs_needed, priority, complexity, status, satisfaction,
		month, week_of, week_start,
		assignment_date, initial_deadline, actual_deadline,
		duration_hours, postpone_count, completion_pct,
		field1, field2, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := append([]any{w.ID}, workProgramValues(w)...)
	args = append(args, w.CreatedAt.Format(time.RFC3339), w.UpdatedAt.Format(time.RFC3339))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting work program: %w", translateWriteError(err))
	}
	return r.writeLinks(ctx, w)
}

// Update overwrites every column and both link sets; created_at is kept.
func (r *SQLiteWorkProgramRepo) Update(ctx context.Context, w *domain.WorkProgram) error {
	query := `UPDATE work_programs SET name = ?, owner_id = ?,
		department_id = ?, project_id = ?, activity_id = ?, procedure_id = ?, task_description_id = ?, responsible_id = ?,
		inputs_needed = ?, priority = ?, complexity = ?, status = ?, satisfaction = ?,
		month = ?, week_of = ?, week_start = ?,
		assignment_date = ?, initial_deadline = ?, actual_deadline = ?,
		duration_hours = ?, postpone_count = ?, completion_pct = ?,
		field1 = ?, field2 = ?, comments = ?, updated_at = ?
		WHERE id = ?`
	args := append(workProgramValues(w), w.UpdatedAt.Format(time.RFC3339), w.ID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating work program: %w", translateWriteError(err))
	}
	if err := requireAffected(res, fmt.Sprintf("work program %q", w.ID)); err != nil {
		return err
	}
	return r.writeLinks(ctx, w)
}

func workProgramValues(w *domain.WorkProgram) []any {
	return []any{
		w.Name, w.OwnerID,
		nullableString(w.DepartmentID), nullableString(w.ProjectID),
		nullableString(w.ActivityID), nullableString(w.ProcedureID),
		nullableString(w.TaskDescriptionID), nullableString(w.ResponsibleID),
		w.InputsNeeded, string(w.Priority), string(w.Complexity), string(w.Status), string(w.Satisfaction),
		w.Month, w.WeekOf, nullableTimeToString(w.WeekStart, dateLayout),
		nullableTimeToString(w.AssignmentDate, dateLayout),
		nullableTimeToString(w.InitialDeadline, dateLayout),
		nullableTimeToString(w.ActualDeadline, dateLayout),
		w.DurationHours, w.PostponeCount, w.CompletionPct,
		w.Field1, w.Field2, w.Comments,
	}
}

func (r *SQLiteWorkProgramRepo) writeLinks(ctx context.Context, w *domain.WorkProgram) error {
	if err := replaceLinks(ctx, r.db, "work_program_deliverables", "work_program_id", "deliverable_id", w.ID, domain.UniqueIDs(w.DeliverableIDs)); err != nil {
		return translateWriteError(err)
	}
	if err := replaceLinks(ctx, r.db, "work_program_supports", "work_program_id", "employee_id", w.ID, domain.UniqueIDs(w.SupportIDs)); err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *SQLiteWorkProgramRepo) GetByID(ctx context.Context, id string) (*domain.WorkProgram, error) {
	w, err := scanWorkProgram(r.db.QueryRowContext(ctx, workProgramColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work program %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return w, r.loadLinks(ctx, w)
}

func (r *SQLiteWorkProgramRepo) FindByName(ctx context.Context, name string) (*domain.WorkProgram, error) {
	w, err := scanWorkProgram(r.db.QueryRowContext(ctx,
		workProgramColumns+` WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work program %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return w, r.loadLinks(ctx, w)
}

func (r *SQLiteWorkProgramRepo) List(ctx context.Context, filter WorkProgramFilter) ([]*domain.WorkProgram, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.DepartmentID != "" {
		where = append(where, "department_id = ?")
		args = append(args, filter.DepartmentID)
	}
	query := workProgramColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, rowid"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing work programs: %w", err)
	}
	var out []*domain.WorkProgram
	for rows.Next() {
		w, err := scanWorkProgram(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating work programs: %w", err)
	}
	rows.Close()

	for _, w := range out {
		if err := r.loadLinks(ctx, w); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteWorkProgramRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_programs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work program: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("work program %q", id))
}

func (r *SQLiteWorkProgramRepo) loadLinks(ctx context.Context, w *domain.WorkProgram) error {
	var err error
	if w.DeliverableIDs, err = loadLinks(ctx, r.db, "work_program_deliverables", "work_program_id", "deliverable_id", w.ID); err != nil {
		return err
	}
	if w.SupportIDs, err = loadLinks(ctx, r.db, "work_program_supports", "work_program_id", "employee_id", w.ID); err != nil {
		return err
	}
	return nil
}

func scanWorkProgram(row rowScanner) (*domain.WorkProgram, error) {
	var w domain.WorkProgram
	var deptID, projectID, activityID, procedureID, taskID, responsibleID sql.NullString
	var priority, complexity, status, satisfaction string
	var weekStart, assignment, initialDeadline, actualDeadline sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&w.ID, &w.Name, &w.OwnerID,
		&deptID, &projectID, &activityID, &procedureID, &taskID, &responsibleID,
		&w.InputsNeeded, &priority, &complexity, &status, &satisfaction,
		&w.Month, &w.WeekOf, &weekStart,
		&assignment, &initialDeadline, &actualDeadline,
		&w.DurationHours, &w.PostponeCount, &w.CompletionPct,
		&w.Field1, &w.Field2, &w.Comments, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning work program: %w", err)
	}

	w.DepartmentID = stringPtr(deptID)
	w.ProjectID = stringPtr(projectID)
	w.ActivityID = stringPtr(activityID)
	w.ProcedureID = stringPtr(procedureID)
	w.TaskDescriptionID = stringPtr(taskID)
	w.ResponsibleID = stringPtr(responsibleID)
	w.Priority = domain.Priority(priority)
	w.Complexity = domain.Complexity(complexity)
	w.Status = domain.ProgramStatus(status)
	w.Satisfaction = domain.Satisfaction(satisfaction)
	w.WeekStart = parseNullableTime(weekStart, dateLayout)
	w.AssignmentDate = parseNullableTime(assignment, dateLayout)
	w.InitialDeadline = parseNullableTime(initialDeadline, dateLayout)
	w.ActualDeadline = parseNullableTime(actualDeadline, dateLayout)

	if w.CreatedAt, w.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// translateWriteError maps constraint failures onto domain sentinels.
func translateWriteError(err error) error {
	switch {
	case db.IsCheckViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrInvalidWorkProgram, err)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w (%v)", domain.ErrUnknownReference, err)
	}
	return err
}
