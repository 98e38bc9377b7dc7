package main

import (
	"fmt"
	"strings"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

// findTodo picks the live instance ref refers to: an exact id, an id
// prefix of at least four characters, or a case-insensitive title.
func findTodo(todos []model.Todo, ref string) (model.Todo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Todo{}, fmt.Errorf("task reference: %w", tracker.ErrEmptyInput)
	}

	var matches []model.Todo
	for _, td := range todos {
		if td.ID == ref {
			return td, nil
		}
		if strings.EqualFold(td.Title, ref) || (len(ref) >= 4 && strings.HasPrefix(td.ID, ref)) {
			matches = append(matches, td)
		}
	}

	switch len(matches) {
	case 0:
		return model.Todo{}, fmt.Errorf("task %q: %w", ref, tracker.ErrNotFound)
	case 1:
		return matches[0], nil
	}

	ids := make([]string, len(matches))
	for i, td := range matches {
		ids[i] = fmt.Sprintf("%s (%s, %s)", shortID(td.ID), td.Category, td.Period)
	}
	return model.Todo{}, fmt.Errorf("task %q is ambiguous, use an id: %s", ref, strings.Join(ids, ", "))
}

// shortID returns the leading part of an id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
