package importer

import (
	"testing"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHierarchyRow(t *testing.T) {
	h := ParseHierarchyRow(Row{
		"name":     "Audit Q1",
		"domain":   "Finance, Ops",
		"process":  "",
		"activity": "Review",
	})
	assert.Equal(t, "Audit Q1", h.Name)
	assert.Equal(t, []string{"Finance", "Ops"}, h.Names[domain.KindDomain])
	assert.Empty(t, h.Names[domain.KindProcess])
	assert.Equal(t, []string{"Review"}, h.Names[domain.KindActivity])
	assert.Nil(t, h.Notes, "notes column absent")
	assert.True(t, h.Active, "active defaults to true")
}

func TestParseHierarchyRow_DefaultsAndFlags(t *testing.T) {
	h := ParseHierarchyRow(Row{"notes": "", "active": "0"})
	assert.Equal(t, domain.DefaultHierarchyName, h.Name)
	require.NotNil(t, h.Notes)
	assert.Equal(t, "", *h.Notes)
	assert.False(t, h.Active)
}

func TestParseActive(t *testing.T) {
	for _, s := range []string{"", "1", "TRUE", " yes ", "x"} {
		assert.True(t, ParseActive(s), "input=%q", s)
	}
	for _, s := range []string{"0", "false", "no", "archived"} {
		assert.False(t, ParseActive(s), "input=%q", s)
	}
}

func TestParseWorkProgramRow_Defaults(t *testing.T) {
	p, err := ParseWorkProgramRow(Row{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProgramName, p.Name)
	assert.Equal(t, domain.PriorityMedium, p.Priority)
	assert.Equal(t, domain.ComplexityMedium, p.Complexity)
	assert.Equal(t, domain.StatusDraft, p.Status)
	assert.Equal(t, domain.SatisfactionUnset, p.Satisfaction)
	assert.Zero(t, p.DurationHours)
	assert.Zero(t, p.PostponeCount)
	assert.Zero(t, p.CompletionPct)
	assert.Nil(t, p.AssignmentDate)
}

func TestParseWorkProgramRow_AllColumns(t *testing.T) {
	p, err := ParseWorkProgramRow(Row{
		ColTaskDescription: "Pick 20 invoices",
		ColMonth:           "March",
		ColWeekOf:          "10",
		ColPriority:        "HIGH",
		ColComplexity:      " Low ",
		ColStatus:          "Ongoing",
		ColSatisfaction:    "Medium",
		ColAssignmentDate:  "2025-03-03",
		ColInitialDeadline: "14/03/2025",
		ColDuration:        "7.5",
		ColPostpones:       "2",
		ColCompletion:      "40%",
		ColDeliverables:    "Report, Memo",
		ColSupport:         "Bob,",
		ColActivity:        "Review",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pick 20 invoices", p.Name)
	assert.Equal(t, "Pick 20 invoices", p.TaskDescription)
	assert.Equal(t, "march", p.Month)
	assert.Equal(t, 10, p.WeekOf)
	assert.Equal(t, domain.PriorityHigh, p.Priority)
	assert.Equal(t, domain.ComplexityLow, p.Complexity)
	assert.Equal(t, domain.StatusOngoing, p.Status)
	assert.Equal(t, domain.SatisfactionMedium, p.Satisfaction)
	require.NotNil(t, p.AssignmentDate)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), *p.AssignmentDate)
	require.NotNil(t, p.InitialDeadline)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *p.InitialDeadline)
	assert.Equal(t, 7.5, p.DurationHours)
	assert.Equal(t, 2, p.PostponeCount)
	assert.Equal(t, 40.0, p.CompletionPct)
	assert.Equal(t, []string{"Report", "Memo"}, p.Deliverables)
	assert.Equal(t, []string{"Bob"}, p.Supports)
	assert.Equal(t, "Review", p.Activity)
}

func TestParseWorkProgramRow_NonNumericFails(t *testing.T) {
	_, err := ParseWorkProgramRow(Row{ColTaskDescription: "x", ColDuration: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColDuration)

	_, err = ParseWorkProgramRow(Row{ColPostpones: "1.5"})
	assert.Error(t, err)

	_, err = ParseWorkProgramRow(Row{ColActualDeadline: "next week"})
	assert.Error(t, err)
}
