package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/selection"
	"github.com/alexanderramin/workprog/internal/service"
)

type programResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	OwnerID              string   `json:"owner_id"`
	DepartmentID         string   `json:"department_id,omitempty"`
	ProjectID            string   `json:"project_id,omitempty"`
	ActivityID           string   `json:"activity_id,omitempty"`
	ProcedureID          string   `json:"procedure_id,omitempty"`
	TaskDescriptionID    string   `json:"task_description_id,omitempty"`
	ResponsibleID        string   `json:"responsible_id,omitempty"`
	DeliverableIDs       []string `json:"deliverable_ids"`
	SupportIDs           []string `json:"support_ids"`
	InputsNeeded         string   `json:"inputs_needed,omitempty"`
	Priority             string   `json:"priority"`
	Complexity           string   `json:"complexity"`
	Status               string   `json:"status"`
	Satisfaction         string   `json:"satisfaction_level,omitempty"`
	Month                string   `json:"month,omitempty"`
	WeekOf               int      `json:"week_of,omitempty"`
	WeekStart            string   `json:"week_start,omitempty"`
	AssignmentDate       string   `json:"assignment_date,omitempty"`
	InitialDeadline      string   `json:"initial_deadline,omitempty"`
	ActualDeadline       string   `json:"actual_deadline,omitempty"`
	DurationHours        float64  `json:"duration_effort"`
	PostponeCount        int      `json:"nb_postpones"`
	CompletionPct        float64  `json:"completion_percentage"`
	Field1               string   `json:"champ1,omitempty"`
	Field2               string   `json:"champ2,omitempty"`
	Comments             string   `json:"comments,omitempty"`
	IsExternalDepartment *bool    `json:"is_external_department,omitempty"`
}

func dateText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func newProgramResponse(w *domain.WorkProgram) programResponse {
	return programResponse{
		ID:                w.ID,
		Name:              w.Name,
		OwnerID:           w.OwnerID,
		DepartmentID:      domain.StrValue(w.DepartmentID),
		ProjectID:         domain.StrValue(w.ProjectID),
		ActivityID:        domain.StrValue(w.ActivityID),
		ProcedureID:       domain.StrValue(w.ProcedureID),
		TaskDescriptionID: domain.StrValue(w.TaskDescriptionID),
		ResponsibleID:     domain.StrValue(w.ResponsibleID),
		DeliverableIDs:    nonNil(w.DeliverableIDs),
		SupportIDs:        nonNil(w.SupportIDs),
		InputsNeeded:      w.InputsNeeded,
		Priority:          string(w.Priority),
		Complexity:        string(w.Complexity),
		Status:            string(w.Status),
		Satisfaction:      string(w.Satisfaction),
		Month:             w.Month,
		WeekOf:            w.WeekOf,
		WeekStart:         dateText(w.WeekStart),
		AssignmentDate:    dateText(w.AssignmentDate),
		InitialDeadline:   dateText(w.InitialDeadline),
		ActualDeadline:    dateText(w.ActualDeadline),
		DurationHours:     w.DurationHours,
		PostponeCount:     w.PostponeCount,
		CompletionPct:     w.CompletionPct,
		Field1:            w.Field1,
		Field2:            w.Field2,
		Comments:          w.Comments,
	}
}

func (s *server) handleFormMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.cfg.Selection.FormMetadata(r.Context(), s.cfg.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.cfg.WorkPrograms.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newProgramResponse(view.Program)
	resp.IsExternalDepartment = &view.IsExternalDepartment
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, badRequest(fmt.Sprintf("parsing form: %v", err)))
		return
	}
	program, err := s.cfg.WorkPrograms.Submit(r.Context(), r.PostForm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProgramResponse(program))
}

type onChangeRequest struct {
	Form  selection.Form  `json:"form"`
	Field selection.Field `json:"field"`
	Value string          `json:"value"`
}

func (s *server) handleOnChange(w http.ResponseWriter, r *http.Request) {
	var req onChangeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, badRequest(fmt.Sprintf("decoding request: %v", err)))
		return
	}
	switch req.Field {
	case selection.FieldActivity, selection.FieldProcedure, selection.FieldTaskDescription:
	default:
		s.writeError(w, r, badRequest(fmt.Sprintf("field %q has no change rule", req.Field)))
		return
	}
	res, err := s.cfg.Selection.OnChange(r.Context(), req.Form, req.Field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleImport accepts either a JSON array of rows or a multipart upload
// whose "file" part is read by extension.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	target, err := service.ParseImportTarget(chi.URLParam(r, "target"))
	if err != nil {
		s.writeError(w, r, newAPIError(http.StatusNotFound, "", err.Error()))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var result *service.ImportResult
	if mediaType == "multipart/form-data" {
		result, err = s.importUpload(r, target)
	} else {
		result, err = s.importJSON(r, target)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newImportResponse(result))
}

func (s *server) importJSON(r *http.Request, target service.ImportTarget) (*service.ImportResult, error) {
	rows, err := importer.ReadJSON(r.Body)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	if target == service.TargetHierarchy {
		return s.cfg.Imports.ImportHierarchyRows(r.Context(), rows)
	}
	return s.cfg.Imports.ImportWorkProgramRows(r.Context(), rows)
}

func (s *server) importUpload(r *http.Request, target service.ImportTarget) (*service.ImportResult, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest(fmt.Sprintf("reading upload: %v", err))
	}
	defer file.Close()

	// Workbooks are read from disk, so every upload is staged as a temp file
	// keeping its extension.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "workprog-import-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, newAPIError(http.StatusRequestEntityTooLarge, "", err.Error())
		}
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	return s.cfg.Imports.ImportFile(r.Context(), target, tmp.Name(), s.loadOptions())
}

type unresolvedResponse struct {
	Column      string   `json:"column"`
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type rowResponse struct {
	Row        int                  `json:"row"`
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Outcome    string               `json:"outcome"`
	Error      string               `json:"error,omitempty"`
	CreatedRef int                  `json:"created_references,omitempty"`
	Unresolved []unresolvedResponse `json:"unresolved,omitempty"`
}

type importResponse struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
	Rows    []rowResponse `json:"rows"`
}

func newImportResponse(res *service.ImportResult) importResponse {
	out := importResponse{
		Created: res.Created,
		Updated: res.Updated,
		Failed:  res.Failed,
		Rows:    make([]rowResponse, 0, len(res.Rows)),
	}
	for _, row := range res.Rows {
		rr := rowResponse{
			Row:        row.Row,
			ID:         row.ID,
			Name:       row.Name,
			Outcome:    string(row.Outcome),
			Error:      row.Error,
			CreatedRef: row.CreatedRef,
		}
		for _, u := range row.Unresolved {
			rr.Unresolved = append(rr.Unresolved, unresolvedResponse{Column: u.Column, Name: u.Name, Suggestions: u.Suggestions})
		}
		out.Rows = append(out.Rows, rr)
	}
	return out
}
