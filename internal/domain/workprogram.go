package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultProgramName is used when an imported row has no task description.
const DefaultProgramName = "New program"

// WorkProgram is a single trackable work item. Its hierarchy references are
// each optional and are not checked against one another.
type WorkProgram struct {
	ID      string
	Name    string `validate:"required"`
	OwnerID string

	DepartmentID      *string
	ProjectID         *string
	ActivityID        *string
	ProcedureID       *string
	TaskDescriptionID *string
	ResponsibleID     *string
	DeliverableIDs    []string
	SupportIDs        []string

	InputsNeeded string
	Priority     Priority      `validate:"oneof=low medium high"`
	Complexity   Complexity    `validate:"oneof=low medium high"`
	Status       ProgramStatus `validate:"oneof=draft ongoing done cancelled"`
	Satisfaction Satisfaction  `validate:"omitempty,oneof=low medium high"`

	// Calendar selection
	Month     string `validate:"omitempty,oneof=january february march april may june july august september october november december"`
	WeekOf    int    `validate:"gte=0,lte=53"`
	WeekStart *time.Time

	AssignmentDate  *time.Time
	InitialDeadline *time.Time
	ActualDeadline  *time.Time

	DurationHours float64 `validate:"gte=0"`
	PostponeCount int     `validate:"gte=0"`
	CompletionPct float64 `validate:"gte=0,lte=100"`

	// Extension fields, shown for external departments.
	Field1 string
	Field2 string

	Comments  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWorkProgram returns a program carrying the documented defaults.
func NewWorkProgram(name, ownerID string, now time.Time) *WorkProgram {
	return &WorkProgram{
		Name:       strings.TrimSpace(name),
		OwnerID:    ownerID,
		Priority:   PriorityMedium,
		Complexity: ComplexityMedium,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldLabels = map[string]string{
	"Name":          "name",
	"Priority":      "priority",
	"Complexity":    "complexity",
	"Status":        "status",
	"Satisfaction":  "satisfaction",
	"Month":         "month",
	"WeekOf":        "week of",
	"DurationHours": "duration / effort (hrs)",
	"PostponeCount": "number of postpones",
	"CompletionPct": "completion percentage",
}

// Validate checks the write-time invariants. Out-of-range values are
// rejected, never clamped.
func (w *WorkProgram) Validate() error {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidWorkProgram, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, validationMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidWorkProgram, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	if fe.Field() == "CompletionPct" {
		return fmt.Sprintf("%s must be between 0 and 100, got %v", label, fe.Value())
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", label, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", label, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", label, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", label, fe.Tag())
}

// ImportFailure turns w into the placeholder stored for a failed import row.
func (w *WorkProgram) ImportFailure(row string, cause error) {
	w.Name = ImportErrorName(w.Name)
	w.Status = StatusCancelled
	w.Comments = fmt.Sprintf("Failed to import: %s. Error: %v", row, cause)
}
