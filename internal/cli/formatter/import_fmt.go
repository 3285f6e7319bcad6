package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workprog/internal/service"
)

// FormatImportResult renders the per-row outcome of a batch followed by a
// summary line.
func FormatImportResult(res *service.ImportResult) string {
	var b strings.Builder
	for _, row := range res.Rows {
		switch row.Outcome {
		case service.OutcomeCreated:
			b.WriteString(StyleGreen.Render("+ "))
		case service.OutcomeUpdated:
			b.WriteString(StyleBlue.Render("~ "))
		default:
			b.WriteString(StyleRed.Render("✖ "))
		}
		fmt.Fprintf(&b, "%s %s", Dim(fmt.Sprintf("row %d", row.Row)), row.Name)
		if row.CreatedRef > 0 {
			b.WriteString(Dim(fmt.Sprintf("  (%d new references)", row.CreatedRef)))
		}
		b.WriteString("\n")
		if row.Error != "" {
			b.WriteString("    " + StyleRed.Render(row.Error) + "\n")
		}
		for _, u := range row.Unresolved {
			line := fmt.Sprintf("    %s %s %q not found", StyleYellow.Render("?"), u.Column, u.Name)
			if len(u.Suggestions) > 0 {
				line += Dim("; did you mean " + strings.Join(u.Suggestions, ", ") + "?")
			}
			b.WriteString(line + "\n")
		}
	}
	fmt.Fprintf(&b, "%s %d created, %d updated, %d failed\n",
		Bold("Imported:"), res.Created, res.Updated, res.Failed)
	return b.String()
}
