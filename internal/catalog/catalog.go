// Package catalog reads and writes the template catalog as TOML so it can
// be shared between machines or kept under version control.
package catalog

import (
	"fmt"
	"io"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/tracker"
)

// Version is the catalog format version written by Write.
const Version = 1

// Entry is one template in a catalog file.
type Entry struct {
	Title           string       `toml:"title"`
	Category        string       `toml:"category,omitempty"`
	Period          model.Period `toml:"period"`
	MinFrequency    int          `toml:"min_frequency,omitempty"`
	Unit            model.Unit   `toml:"unit,omitempty"`
	MinutesPerPunch int          `toml:"minutes_per_punch,omitempty"`
	Description     string       `toml:"description,omitempty"`
}

// File is the document layout.
type File struct {
	Version   int     `toml:"version"`
	Templates []Entry `toml:"templates"`
}

// Write encodes the templates to w.
func Write(w io.Writer, templates []model.Template) error {
	f := File{Version: Version}
	for _, tpl := range templates {
		f.Templates = append(f.Templates, Entry{
			Title:           tpl.Title,
			Category:        tpl.Category,
			Period:          tpl.Period,
			MinFrequency:    tpl.MinFrequency,
			Unit:            tpl.Unit,
			MinutesPerPunch: tpl.MinutesPerPunch,
			Description:     tpl.Description,
		})
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// Read decodes a catalog into create parameters. Validation is left to the
// tracker.
func Read(r io.Reader) ([]tracker.TaskParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("catalog version %d is newer than supported version %d", f.Version, Version)
	}

	params := make([]tracker.TaskParams, 0, len(f.Templates))
	for _, e := range f.Templates {
		params = append(params, tracker.TaskParams{
			Title:           e.Title,
			Category:        e.Category,
			Period:          e.Period,
			MinFrequency:    e.MinFrequency,
			Unit:            e.Unit,
			MinutesPerPunch: e.MinutesPerPunch,
			Description:     e.Description,
		})
	}
	return params, nil
}

// WriteFile writes the catalog to path.
func WriteFile(path string, templates []model.Template) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog file: %w", err)
	}
	if err := Write(f, templates); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads the catalog at path.
func ReadFile(path string) ([]tracker.TaskParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
