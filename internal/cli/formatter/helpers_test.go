package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/workprog/internal/domain"
	"github.com/alexanderramin/workprog/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestTruncID(t *testing.T) {
	assert.Equal(t, "12345678", TruncID("12345678-aaaa-bbbb"))
	assert.Equal(t, "short", TruncID("short"))
}

func TestStatusPill(t *testing.T) {
	assert.Contains(t, StatusPill(domain.StatusOngoing), "Ongoing")
	assert.Contains(t, StatusPill(domain.StatusDone), "Done")
	assert.Contains(t, StatusPill("paused"), "paused")
}

func TestDateTextAndOrDash(t *testing.T) {
	d := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-09", DateText(&d))
	assert.Contains(t, DateText(nil), "-")
	assert.Equal(t, "x", OrDash("x"))
	assert.Contains(t, OrDash("  "), "-")
}

func TestRenderTable_TruncatesLongCells(t *testing.T) {
	long := strings.Repeat("a", maxCellWidth+10)
	out := RenderTable([]string{"NAME"}, [][]string{{long}, {"short"}})
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "short")
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatRefTree(t *testing.T) {
	fin := &domain.RefEntity{ID: "d1", Kind: domain.KindDomain, Name: "Finance"}
	closing := &domain.RefEntity{ID: "p1", Kind: domain.KindProcess, Name: "Closing"}
	loose := &domain.RefEntity{ID: "a1", Kind: domain.KindActivity, Name: "Loose"}
	out := FormatRefTree([]*service.RefNode{
		{Entity: fin, Children: []*service.RefNode{{Entity: closing}}},
		{Entity: loose},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Finance")
	assert.Contains(t, lines[1], treeCorner+"Closing")
	assert.Contains(t, lines[1], "[ Process ]")
	assert.Contains(t, lines[2], "Activity")
}

func TestFormatImportResult(t *testing.T) {
	out := FormatImportResult(&service.ImportResult{
		Rows: []service.RowResult{
			{Row: 1, Name: "Audit", Outcome: service.OutcomeCreated, CreatedRef: 2},
			{Row: 2, Name: "Close books", Outcome: service.OutcomeUpdated,
				Unresolved: []service.Unresolved{{Column: "Activity", Name: "Reveiw", Suggestions: []string{"Review"}}}},
			{Row: 3, Name: "ERROR-IMPORT-Bad", Outcome: service.OutcomeFailed, Error: "boom"},
		},
		Created: 1, Updated: 1, Failed: 1,
	})
	assert.Contains(t, out, "2 new references")
	assert.Contains(t, out, `Activity "Reveiw" not found`)
	assert.Contains(t, out, "did you mean Review?")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "1 created, 1 updated, 1 failed")
}

func TestFormatProgramShow_ExtensionFieldsForExternalOnly(t *testing.T) {
	w := domain.NewWorkProgram("Close books", "alice", time.Now())
	w.Field1 = "ext-value"

	internal := FormatProgramShow(&service.WorkProgramView{Program: w}, nil)
	assert.NotContains(t, internal, "ext-value")

	external := FormatProgramShow(&service.WorkProgramView{Program: w, IsExternalDepartment: true}, nil)
	assert.Contains(t, external, "ext-value")
}

func TestFormatInconsistencies(t *testing.T) {
	assert.Contains(t, FormatInconsistencies(nil, nil), "Every linked entity")
	out := FormatInconsistencies([]service.Inconsistency{{
		Kind: domain.KindProcess, EntityName: "Hiring", ParentKind: domain.KindDomain, ParentID: "d2",
	}}, map[string]string{"d2": "Operations"})
	assert.Contains(t, out, "Hiring")
	assert.Contains(t, out, "Operations")
}
