// Package recommend implements heuristic workout template recommendation
// over a static catalog.
package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrCatalogMissing indicates the catalog source does not exist. Fatal at
// engine construction; recommendations cannot be served without a catalog.
var ErrCatalogMissing = errors.New("workout catalog not found")

// TrainingSession is one session in a template's split. Opaque to ranking.
type TrainingSession struct {
	Day           string   `json:"day"`
	Focus         string   `json:"focus"`
	PrimaryLifts  []string `json:"primary_lifts"`
	AccessoryWork []string `json:"accessory_work"`
}

// WorkoutTemplate is a catalog entry. The field names form a compatibility
// surface with existing catalogs and must not change.
type WorkoutTemplate struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Description            string            `json:"description"`
	Goal                   string            `json:"goal"`
	ExperienceLevel        string            `json:"experience_level"`
	WeeklyFrequencyOptions []int             `json:"weekly_frequency_options"`
	Equipment              []string          `json:"equipment"`
	TrainingSplit          []TrainingSession `json:"training_split"`
	CoachingNotes          []string          `json:"coaching_notes"`
}

type catalogDocument struct {
	Templates []WorkoutTemplate `json:"templates"`
}

// LoadCatalog reads the template catalog from a JSON document containing a
// `templates` list. The catalog is loaded once per process and treated as
// immutable afterwards.
func LoadCatalog(path string) ([]WorkoutTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Templates, nil
}
