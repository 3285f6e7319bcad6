package selection

import "github.com/alexanderramin/workprog/internal/domain"

// EnumOptions converts domain enumeration values into selection options.
func EnumOptions(values []domain.EnumValue) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v.Value, Label: v.Label})
	}
	return out
}

// RefOptions lists entities as (id, name) options, keeping only those c
// allows when c is non-nil.
func RefOptions(entities []*domain.RefEntity, c *Constraint) []Option {
	out := make([]Option, 0, len(entities))
	for _, e := range entities {
		if c != nil && !c.Allows(e) {
			continue
		}
		out = append(out, Option{Value: e.ID, Label: e.Name})
	}
	return out
}

// Enums groups the recognised values of every enumerated work program field.
type Enums struct {
	Priority     []Option `json:"priority"`
	Complexity   []Option `json:"complexity"`
	Status       []Option `json:"status"`
	Satisfaction []Option `json:"satisfaction"`
}

func AllEnums() Enums {
	return Enums{
		Priority:     EnumOptions(domain.PriorityValues),
		Complexity:   EnumOptions(domain.ComplexityValues),
		Status:       EnumOptions(domain.StatusValues),
		Satisfaction: EnumOptions(domain.SatisfactionValues),
	}
}
