package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/workprog/internal/db"
)

const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString returns nil (SQL NULL) for a nil time.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// nullableString maps a nil or blank pointer to SQL NULL.
func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

func parseTimestamps(createdAt, updatedAt string) (time.Time, time.Time, error) {
	c, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if updatedAt == "" {
		return c, c, nil
	}
	u, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return c, u, nil
}

// replaceLinks rewrites an ordered many-to-many set: every existing row for
// ownerID is removed, then ids are inserted with their position.
func replaceLinks(ctx context.Context, conn db.DBTX, table, ownerCol, refCol, ownerID string, ids []string) error {
	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, table, ownerCol), ownerID); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	if len(ids) == 0 {
		return nil
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, position) VALUES (?, ?, ?)`, table, ownerCol, refCol)
	for i, id := range ids {
		if _, err := conn.ExecContext(ctx, insert, ownerID, id, i); err != nil {
			return fmt.Errorf("linking %s: %w", table, err)
		}
	}
	return nil
}

func loadLinks(ctx context.Context, conn db.DBTX, table, ownerCol, refCol, ownerID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY position`, refCol, table, ownerCol)
	rows, err := conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return ids, nil
}
