package catalog_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/punchcard/internal/catalog"
	"github.com/nhle/punchcard/internal/model"
)

func TestWriteRead(t *testing.T) {
	tpls := []model.Template{
		{ID: "a", Title: "Run", Category: "sport", Period: model.PeriodWeekly, MinFrequency: 3, Unit: model.UnitCount},
		{ID: "b", Title: "Piano", Category: "music", Period: model.PeriodDaily, MinFrequency: 1,
			Unit: model.UnitMinutes, MinutesPerPunch: 30, Description: "scales first"},
	}

	var buf bytes.Buffer
	if err := catalog.Write(&buf, tpls); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), `"a"`) {
		t.Errorf("template ids leaked into the catalog:\n%s", buf.String())
	}

	params, err := catalog.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d entries, want 2", len(params))
	}
	if p := params[1]; p.Title != "Piano" || p.Unit != model.UnitMinutes || p.MinutesPerPunch != 30 || p.Description != "scales first" {
		t.Errorf("entry = %+v", p)
	}
	if p := params[0]; p.Period != model.PeriodWeekly || p.MinFrequency != 3 {
		t.Errorf("entry = %+v", p)
	}
}

func TestReadHandWrittenCatalog(t *testing.T) {
	doc := `
version = 1

[[templates]]
title = "Meditate"
period = "daily"

[[templates]]
title = "Call parents"
category = "family"
period = "weekly"
`
	params, err := catalog.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(params) != 2 || params[1].Category != "family" || params[0].MinFrequency != 0 {
		t.Errorf("params = %+v", params)
	}
}

func TestReadRejectsNewerVersion(t *testing.T) {
	if _, err := catalog.Read(strings.NewReader("version = 9\n")); err == nil {
		t.Error("expected error for newer version")
	}
	if _, err := catalog.Read(strings.NewReader("[[templates]\n")); err == nil {
		t.Error("expected error for malformed toml")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	tpls := []model.Template{{Title: "Stretch", Period: model.PeriodDaily, MinFrequency: 1, Unit: model.UnitCount}}
	if err := catalog.WriteFile(path, tpls); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	params, err := catalog.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(params) != 1 || params[0].Title != "Stretch" {
		t.Errorf("params = %+v", params)
	}
}
