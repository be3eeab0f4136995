package catalog

import (
	"strings"
	"testing"
)

const sampleCSV = `name;equipment;settings
# barbell work
Deadlift;barre olympique;repetitions, poids
run;;distance,lestes,distance
plank;aucun
`

// TestParse covers the happy path: header, comments, lower-casing, default
// equipment and setting dedup.
func TestParse(t *testing.T) {
	seeds, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(seeds) != 3 {
		t.Fatalf("got %d seeds, want 3", len(seeds))
	}

	if seeds[0].Name != "deadlift" || seeds[0].Equipment != "barre olympique" {
		t.Errorf("seed 0 = %+v", seeds[0])
	}
	if got := strings.Join(seeds[0].Settings, ","); got != "repetitions,poids" {
		t.Errorf("deadlift settings = %q", got)
	}
	if seeds[1].Equipment != DefaultEquipment {
		t.Errorf("run equipment = %q, want %q", seeds[1].Equipment, DefaultEquipment)
	}
	if got := strings.Join(seeds[1].Settings, ","); got != "distance,lestes" {
		t.Errorf("run settings = %q", got)
	}
	if len(seeds[2].Settings) != 0 {
		t.Errorf("plank settings = %v, want none", seeds[2].Settings)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"duplicate", "run;aucun;distance\nRUN;aucun;distance\n", "already defined"},
		{"empty name", ";aucun;distance\n", "empty movement name"},
		{"reserved", "none;aucun;\n", "reserved"},
		{"too many fields", "run;aucun;distance;x\n", "want 2 or 3 fields"},
		{"one field", "run\n", "want 2 or 3 fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

// TestDefaults verifies the built-in catalog has unique names and every
// movement declares at least one setting.
func TestDefaults(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Defaults() {
		if seen[s.Name] {
			t.Errorf("duplicate movement %q", s.Name)
		}
		seen[s.Name] = true
		if len(s.Settings) == 0 {
			t.Errorf("%s has no settings", s.Name)
		}
		if s.Equipment == "" {
			t.Errorf("%s has no equipment", s.Name)
		}
	}
	if !seen["deadlift"] || !seen["run"] {
		t.Error("defaults miss deadlift or run")
	}
}
