package engine

// ExportRow is one task of a flattened store.
type ExportRow struct {
	Category  Category
	Depth     int
	ID        string
	ParentID  string
	Text      string
	Completed bool
	DueDate   string
	Priority  Priority
	Notes     string
}

// Flatten lists every task of s, categories in fixed order, each forest
// depth-first with parents before their children.
func Flatten(s Store) []ExportRow {
	var rows []ExportRow
	for _, c := range Categories {
		Walk(s[c], func(t Task, depth int) bool {
			rows = append(rows, ExportRow{
				Category:  c,
				Depth:     depth,
				ID:        t.ID,
				ParentID:  t.ParentID,
				Text:      t.Text,
				Completed: t.Completed,
				DueDate:   t.DueDate,
				Priority:  t.Priority,
				Notes:     t.Notes,
			})
			return true
		})
	}
	return rows
}
