package engine

// ============================================================================
// TABLE BUILDER — Produces TableData for recommended actions
// ============================================================================
// Rows keep the server order; nothing is sorted or filtered client-side.
// ============================================================================

var priorityAccents = map[Priority]string{
	PriorityHigh:   "#f87171",
	PriorityMedium: "#facc15",
	PriorityLow:    "#60a5fa",
}

// PriorityAccent returns the accent color for a priority. Unknown
// priorities share the Low color.
func PriorityAccent(p Priority) string {
	if c, ok := priorityAccents[p]; ok {
		return c
	}
	return priorityAccents[PriorityLow]
}

// BuildActionTable produces the "Recommended Actions" table. It returns nil
// when there are no actions so callers can skip the section entirely.
func BuildActionTable(actions []Action) *TableData {
	if len(actions) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(actions))
	accents := make([]string, 0, len(actions))
	for _, a := range actions {
		priority := string(a.Priority)
		if priority == "" {
			priority = string(PriorityLow)
		}
		rows = append(rows, []string{a.Title, priority + " Priority"})
		accents = append(accents, PriorityAccent(a.Priority))
	}

	return &TableData{
		Title: "Recommended Actions",
		Columns: []Column{
			{Key: "title", Label: "Action", Type: "text", Align: "left"},
			{Key: "priority", Label: "Priority", Type: "text", Align: "right"},
		},
		Rows:    rows,
		Accents: accents,
	}
}
