package storage

import "testing"

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// TestGroupMovements verifies join rows fold into ordered movements, with
// settings kept in row order and movements without settings kept empty.
func TestGroupMovements(t *testing.T) {
	rows := []movementSettingRow{
		{ExerciseID: 1, LinkID: 10, MovementID: 5, Name: "deadlift", Order: 1, SettingName: strPtr("repetitions"), SettingValue: intPtr(10)},
		{ExerciseID: 1, LinkID: 10, MovementID: 5, Name: "deadlift", Order: 1, SettingName: strPtr("poids"), SettingValue: intPtr(100)},
		{ExerciseID: 1, LinkID: 11, MovementID: 7, Name: "run", Order: 2},
		{ExerciseID: 2, LinkID: 12, MovementID: 5, Name: "deadlift", Order: 1, SettingName: strPtr("repetitions"), SettingValue: nil},
	}

	got := groupMovements(rows)

	ex1 := got[1]
	if len(ex1) != 2 {
		t.Fatalf("exercise 1 movements = %d, want 2", len(ex1))
	}
	if ex1[0].Name != "deadlift" || len(ex1[0].Settings) != 2 {
		t.Errorf("first movement = %+v", ex1[0])
	}
	if ex1[0].Settings[1].Name != "poids" || ex1[0].Settings[1].Value != 100 {
		t.Errorf("second setting = %+v", ex1[0].Settings[1])
	}
	if ex1[1].Order != 2 || ex1[1].Settings == nil || len(ex1[1].Settings) != 0 {
		t.Errorf("second movement = %+v", ex1[1])
	}

	ex2 := got[2]
	if len(ex2) != 1 || ex2[0].Settings[0].Value != 0 {
		t.Errorf("exercise 2 = %+v", ex2)
	}
	if _, ok := got[3]; ok {
		t.Error("unexpected exercise 3")
	}
}

func TestGroupMovementsEmpty(t *testing.T) {
	if got := groupMovements(nil); len(got) != 0 {
		t.Errorf("groupMovements(nil) = %v", got)
	}
}
