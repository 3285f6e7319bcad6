package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultHierarchyName is used when an imported row carries no name.
	DefaultHierarchyName = "New entry"

	// ImportErrorPrefix marks the placeholder written for a failed import row.
	ImportErrorPrefix = "ERROR-IMPORT-"
)

// Hierarchy is a named snapshot grouping arbitrary selections from each
// hierarchy level. Its link sets are independent: a linked process need not
// belong to a linked domain.
type Hierarchy struct {
	ID           string
	Name         string
	DepartmentID *string
	ProjectID    *string
	Notes        string
	Active       bool

	// Links holds the ordered entity ids linked at each level.
	Links map[EntityKind][]string

	// AllowedDepartmentIDs is maintained by SyncProject from the project type.
	AllowedDepartmentIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewHierarchy(name string, now time.Time) *Hierarchy {
	return &Hierarchy{
		Name:      strings.TrimSpace(name),
		Active:    true,
		Links:     make(map[EntityKind][]string, len(EntityKinds)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetLinks replaces the whole link set for kind. A nil or empty ids clears it.
func (h *Hierarchy) SetLinks(kind EntityKind, ids []string) {
	if h.Links == nil {
		h.Links = make(map[EntityKind][]string, len(EntityKinds))
	}
	ids = UniqueIDs(ids)
	if len(ids) == 0 {
		delete(h.Links, kind)
		return
	}
	h.Links[kind] = ids
}

func (h *Hierarchy) LinkIDs(kind EntityKind) []string {
	return h.Links[kind]
}

// ApplyProjectType replaces the allowed-department set from the departments
// matching the project's type, in the order given. An untyped or missing
// project clears the set.
func (h *Hierarchy) ApplyProjectType(project *Project, departmentsOfType []Department) {
	if project == nil || project.Type == ScopeUnset {
		h.AllowedDepartmentIDs = nil
		return
	}
	ids := make([]string, 0, len(departmentsOfType))
	for _, d := range departmentsOfType {
		if d.Type == project.Type {
			ids = append(ids, d.ID)
		}
	}
	h.AllowedDepartmentIDs = UniqueIDs(ids)
}

// ApplyAllowedDepartments defaults the primary department to the first
// allowed department when none is set. An existing primary department is kept.
func (h *Hierarchy) ApplyAllowedDepartments() {
	if len(h.AllowedDepartmentIDs) == 0 || h.DepartmentID != nil {
		return
	}
	first := h.AllowedDepartmentIDs[0]
	h.DepartmentID = &first
}

func (h *Hierarchy) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidHierarchy)
	}
	for kind := range h.Links {
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown link kind %q", ErrInvalidHierarchy, kind)
		}
	}
	return nil
}

// ImportErrorName builds the placeholder name for a failed import of name.
func ImportErrorName(name string) string {
	return ImportErrorPrefix + name
}
