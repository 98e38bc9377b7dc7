package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

func TestFindTodo(t *testing.T) {
	todos := []model.Todo{
		{ID: "0f8d1c2a-1111", Title: "Read", Category: "mind", Period: model.PeriodDaily},
		{ID: "7a6b5c4d-2222", Title: "Run", Category: "sport", Period: model.PeriodWeekly},
		{ID: "7a6b9999-3333", Title: "run", Category: "cardio", Period: model.PeriodDaily},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"exact id", "7a6b5c4d-2222", "7a6b5c4d-2222", nil},
		{"title ignores case", "READ", "0f8d1c2a-1111", nil},
		{"id prefix", "0f8d", "0f8d1c2a-1111", nil},
		{"short prefix is not matched", "0f8", "", tracker.ErrNotFound},
		{"missing", "Swim", "", tracker.ErrNotFound},
		{"blank", "  ", "", tracker.ErrEmptyInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td, err := findTodo(todos, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findTodo: %v", err)
			}
			if td.ID != tt.wantID {
				t.Errorf("id = %s, want %s", td.ID, tt.wantID)
			}
		})
	}

	if _, err := findTodo(todos, "run"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("ambiguous title err = %v", err)
	}
	if _, err := findTodo(todos, "7a6b"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("ambiguous prefix err = %v", err)
	}
}
