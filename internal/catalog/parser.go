// Package catalog reads movement catalogs to load into the database.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/claude/fitlg/internal/models"
)

// DefaultEquipment is used when a row leaves the equipment empty.
const DefaultEquipment = "aucun"

// Parse reads a semicolon-separated catalog:
//
//	name;equipment;settings
//	deadlift;barre olympique;repetitions,poids
//
// The header row is optional and lines starting with '#' are skipped.
// Names are lower-cased; a name may appear only once.
func Parse(r io.Reader) ([]models.CatalogSeed, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var seeds []models.CatalogSeed
	seen := make(map[string]int)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if isHeader(rec) && len(seeds) == 0 {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 || len(rec) > 3 {
			return nil, fmt.Errorf("line %d: want 2 or 3 fields, got %d", line, len(rec))
		}

		name := strings.ToLower(strings.TrimSpace(rec[0]))
		if name == "" {
			return nil, fmt.Errorf("line %d: empty movement name", line)
		}
		if name == models.NoMovement {
			return nil, fmt.Errorf("line %d: %q is reserved", line, name)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("line %d: movement %q already defined on line %d", line, name, prev)
		}
		seen[name] = line

		equipment := strings.TrimSpace(rec[1])
		if equipment == "" {
			equipment = DefaultEquipment
		}

		var settings []string
		if len(rec) == 3 {
			settings = splitSettings(rec[2])
		}
		seeds = append(seeds, models.CatalogSeed{Name: name, Equipment: equipment, Settings: settings})
	}
	return seeds, nil
}

func isHeader(rec []string) bool {
	return len(rec) >= 2 &&
		strings.EqualFold(strings.TrimSpace(rec[0]), "name") &&
		strings.EqualFold(strings.TrimSpace(rec[1]), "equipment")
}

// splitSettings splits a comma-separated setting list, dropping blanks and
// duplicates.
func splitSettings(field string) []string {
	var out []string
	for _, s := range strings.Split(field, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
