// Package checklist holds the static template catalog, the pure checklist
// composer, and the best-effort extraction of checklists from generated text.
package checklist

// Compose builds the task-title list for a technology selection: the base
// checklist first, then each selected technology's template in selection
// order. Duplicate titles keep their first occurrence. Unknown technologies
// contribute nothing.
func Compose(selected []string) []string {
	titles := make([]string, 0, len(BaseChecklist))
	seen := make(map[string]bool, len(BaseChecklist))

	add := func(title string) {
		if seen[title] {
			return
		}
		seen[title] = true
		titles = append(titles, title)
	}

	for _, title := range BaseChecklist {
		add(title)
	}
	for _, tech := range selected {
		for _, title := range Templates[tech] {
			add(title)
		}
	}

	return titles
}
