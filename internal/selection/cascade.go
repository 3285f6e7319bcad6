// Package selection derives the dependent-field behaviour of the work program
// editor: which procedures, deliverables and task descriptions may be picked
// once an activity or procedure is chosen, and which picks must be cleared.
// Everything here is pure; nothing is persisted.
package selection

import (
	"slices"

	"github.com/alexanderramin/workprog/internal/domain"
)

// Field names a form field taking part in the cascade.
type Field string

const (
	FieldActivity        Field = "activity_id"
	FieldProcedure       Field = "procedure_id"
	FieldTaskDescription Field = "task_description_id"
	FieldDeliverables    Field = "deliverable_ids"
)

// Form is the cascade-relevant state of a work program being edited.
type Form struct {
	ActivityID        string   `json:"activity_id"`
	ProcedureID       string   `json:"procedure_id"`
	TaskDescriptionID string   `json:"task_description_id"`
	DeliverableIDs    []string `json:"deliverable_ids"`
}

// Constraint narrows the choices offered for one field. With None set no
// choice is valid; otherwise only entities of Kind whose parent is ParentID
// are offered.
type Constraint struct {
	Field    Field             `json:"field"`
	Kind     domain.EntityKind `json:"kind"`
	ParentID string            `json:"parent_id,omitempty"`
	None     bool              `json:"none"`
}

// Allows reports whether e is a valid choice under c.
func (c Constraint) Allows(e *domain.RefEntity) bool {
	if c.None || e == nil || e.Kind != c.Kind {
		return false
	}
	return e.ParentID != nil && *e.ParentID == c.ParentID
}

// Outcome is the result of a field change: the next form state, the
// constraints to apply and the fields that were cleared.
type Outcome struct {
	Form        Form         `json:"form"`
	Constraints []Constraint `json:"constraints"`
	Reset       []Field      `json:"reset"`
}

// Constraint returns the constraint on field, if any.
func (o Outcome) Constraint(field Field) (Constraint, bool) {
	for _, c := range o.Constraints {
		if c.Field == field {
			return c, true
		}
	}
	return Constraint{}, false
}

// OnActivityChange applies a new activity. Setting one narrows procedures
// and deliverables to its children. Clearing it clears the procedure and the
// deliverables, and through the procedure the task description, leaving no
// valid choice for any of them.
func OnActivityChange(form Form, activityID string) Outcome {
	form.DeliverableIDs = slices.Clone(form.DeliverableIDs)
	form.ActivityID = activityID
	if activityID != "" {
		return Outcome{
			Form: form,
			Constraints: []Constraint{
				{Field: FieldProcedure, Kind: domain.KindProcedure, ParentID: activityID},
				{Field: FieldDeliverables, Kind: domain.KindDeliverable, ParentID: activityID},
			},
		}
	}

	form.DeliverableIDs = nil
	next := OnProcedureChange(form, "")
	next.Constraints = append([]Constraint{
		{Field: FieldProcedure, Kind: domain.KindProcedure, None: true},
		{Field: FieldDeliverables, Kind: domain.KindDeliverable, None: true},
	}, next.Constraints...)
	next.Reset = append([]Field{FieldProcedure, FieldDeliverables}, next.Reset...)
	return next
}

// OnProcedureChange applies a new procedure. Setting one narrows task
// descriptions to its children; clearing it clears the task description.
func OnProcedureChange(form Form, procedureID string) Outcome {
	form.DeliverableIDs = slices.Clone(form.DeliverableIDs)
	form.ProcedureID = procedureID
	if procedureID != "" {
		return Outcome{
			Form: form,
			Constraints: []Constraint{
				{Field: FieldTaskDescription, Kind: domain.KindTaskFormulation, ParentID: procedureID},
			},
		}
	}
	form.TaskDescriptionID = ""
	return Outcome{
		Form: form,
		Constraints: []Constraint{
			{Field: FieldTaskDescription, Kind: domain.KindTaskFormulation, None: true},
		},
		Reset: []Field{FieldTaskDescription},
	}
}

// OnChange dispatches a change of field to its rule. Fields without a rule
// are assigned as is and produce no constraints.
func OnChange(form Form, field Field, value string) Outcome {
	switch field {
	case FieldActivity:
		return OnActivityChange(form, value)
	case FieldProcedure:
		return OnProcedureChange(form, value)
	case FieldTaskDescription:
		form.TaskDescriptionID = value
	}
	form.DeliverableIDs = slices.Clone(form.DeliverableIDs)
	return Outcome{Form: form}
}
