package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// EntityKind names one of the seven reference tables of the workflow hierarchy.
// The set is closed: every kind has a fixed table, parent kind and children.
type EntityKind string

const (
	KindDomain          EntityKind = "domain"
	KindProcess         EntityKind = "process"
	KindSubprocess      EntityKind = "subprocess"
	KindActivity        EntityKind = "activity"
	KindProcedure       EntityKind = "procedure"
	KindDeliverable     EntityKind = "deliverable"
	KindTaskFormulation EntityKind = "task_formulation"
)

// EntityKinds lists every kind in hierarchy order, top first.
var EntityKinds = []EntityKind{
	KindDomain,
	KindProcess,
	KindSubprocess,
	KindActivity,
	KindProcedure,
	KindDeliverable,
	KindTaskFormulation,
}

// ParseEntityKind accepts the canonical kind plus the common spellings used
// in spreadsheets and on the command line ("sub_process", "task-formulation").
func ParseEntityKind(s string) (EntityKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "domain", "domains":
		return KindDomain, nil
	case "process", "processes":
		return KindProcess, nil
	case "subprocess", "sub_process", "subprocesses", "sub_processes":
		return KindSubprocess, nil
	case "activity", "activities":
		return KindActivity, nil
	case "procedure", "procedures":
		return KindProcedure, nil
	case "deliverable", "deliverables":
		return KindDeliverable, nil
	case "task_formulation", "task_formulations", "task", "task_description":
		return KindTaskFormulation, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidEntity, s)
}

// Parent returns the kind an entity of kind k belongs to.
// Domains sit at the top and have no parent.
func (k EntityKind) Parent() (EntityKind, bool) {
	switch k {
	case KindProcess:
		return KindDomain, true
	case KindSubprocess:
		return KindProcess, true
	case KindActivity:
		return KindSubprocess, true
	case KindProcedure, KindDeliverable:
		return KindActivity, true
	case KindTaskFormulation:
		return KindProcedure, true
	}
	return "", false
}

// Children returns the kinds whose parent is k.
func (k EntityKind) Children() []EntityKind {
	var out []EntityKind
	for _, c := range EntityKinds {
		if p, ok := c.Parent(); ok && p == k {
			out = append(out, c)
		}
	}
	return out
}

func (k EntityKind) Valid() bool {
	for _, c := range EntityKinds {
		if c == k {
			return true
		}
	}
	return false
}

// Label is the human readable singular name of the kind.
func (k EntityKind) Label() string {
	switch k {
	case KindSubprocess:
		return "Subprocess"
	case KindTaskFormulation:
		return "Task formulation"
	}
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RefEntity is a row of one of the hierarchy reference tables.
type RefEntity struct {
	ID         string
	Kind       EntityKind
	Key        string
	Name       string
	ParentID   *string
	DomainType ScopeType // domains only
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRefEntity builds an entity carrying only a name, the shape created by
// the hierarchy importer for names it cannot find.
func NewRefEntity(kind EntityKind, name string, now time.Time) *RefEntity {
	e := &RefEntity{
		Kind:      kind,
		Name:      strings.TrimSpace(name),
		Key:       Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind == KindDomain {
		e.DomainType = ScopeInternal
	}
	return e
}

func (e *RefEntity) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown entity kind %q", ErrInvalidEntity, e.Kind)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidEntity, e.Kind)
	}
	if e.Key == "" {
		return fmt.Errorf("%w: %s key is required", ErrInvalidEntity, e.Kind)
	}
	if e.Kind == KindDomain {
		if e.ParentID != nil {
			return fmt.Errorf("%w: a domain has no parent", ErrInvalidEntity)
		}
		if !ValidScopeTypes[string(e.DomainType)] {
			return fmt.Errorf("%w: domain type must be internal or external, got %q", ErrInvalidEntity, e.DomainType)
		}
	} else if e.DomainType != ScopeUnset {
		return fmt.Errorf("%w: only domains carry a type", ErrInvalidEntity)
	}
	return nil
}

// Slugify derives the natural key of a display name: lower-case letters and
// digits separated by single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "entry"
	}
	return slug
}
