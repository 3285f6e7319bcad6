package domain

import (
	"fmt"
	"strings"
	"time"
)

// Department is an organisational unit. Its type drives which projects it
// may be allowed on and whether the extension fields of a work program apply.
type Department struct {
	ID        string
	Name      string
	Type      ScopeType
	CreatedAt time.Time
}

type Employee struct {
	ID           string
	Name         string
	DepartmentID *string
	CreatedAt    time.Time
}

type Project struct {
	ID        string
	Name      string
	Type      ScopeType
	CreatedAt time.Time
}

// IsExternalDepartment reports whether the selected department exists and is
// of external type. The result is derived on every read and never stored.
func IsExternalDepartment(d *Department) bool {
	return d != nil && d.Type == ScopeExternal
}

// ParseScopeType accepts "", "internal" or "external" in any case.
func ParseScopeType(s string) (ScopeType, error) {
	norm := NormalizeEnum(s)
	if norm == "" {
		return ScopeUnset, nil
	}
	if !ValidScopeTypes[norm] {
		return "", fmt.Errorf("type must be internal or external, got %q", s)
	}
	return ScopeType(norm), nil
}

func (d *Department) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: department name is required", ErrInvalidEntity)
	}
	if d.Type != ScopeUnset && !ValidScopeTypes[string(d.Type)] {
		return fmt.Errorf("%w: department type %q", ErrInvalidEntity, d.Type)
	}
	return nil
}

func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: employee name is required", ErrInvalidEntity)
	}
	return nil
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidEntity)
	}
	if p.Type != ScopeUnset && !ValidScopeTypes[string(p.Type)] {
		return fmt.Errorf("%w: project type %q", ErrInvalidEntity, p.Type)
	}
	return nil
}
