package models

// ExerciseType is the kind of exercise picked in the first wizard step.
type ExerciseType string

const (
	Running       ExerciseType = "RUNNING"
	ForTime       ExerciseType = "FORTIME"
	AMRAP         ExerciseType = "AMRAP"
	Warmup        ExerciseType = "WARMUP"
	Strength      ExerciseType = "STRENGTH"
	EMOM          ExerciseType = "EMOM"
	Conditionning ExerciseType = "CONDITIONNING"
)

// ExerciseTypes lists the selectable exercise types in display order.
var ExerciseTypes = []ExerciseType{Running, ForTime, AMRAP, Warmup, Strength, EMOM, Conditionning}

// Label returns the French display label used in the step 1 selector.
func (t ExerciseType) Label() string {
	switch t {
	case Warmup:
		return "ECHAUFFEMENT"
	case Strength:
		return "FORCE"
	case Conditionning:
		return "CONDITIONNEMENT"
	default:
		return string(t)
	}
}

// Valid reports whether t is one of the known exercise types.
func (t ExerciseType) Valid() bool {
	for _, known := range ExerciseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UI goal labels shown next to the goal value input.
const (
	GoalLabelDistance = "Distance"
	GoalLabelDuration = "Duree"
	GoalLabelRounds   = "Nombre de rounds"
)

// GoalTypeLabel maps an exercise type to the goal label shown in step 2.
// Unknown types fall into the rounds label.
func GoalTypeLabel(t ExerciseType) string {
	switch t {
	case Running:
		return GoalLabelDistance
	case AMRAP, EMOM:
		return GoalLabelDuration
	default:
		return GoalLabelRounds
	}
}

// Persisted goal and performance kinds.
const (
	KindDuration = "duree"
	KindRound    = "round"
	KindDistance = "distance"
	KindAnyone   = "anyone"
)

// GoalKind is the goal type stored with an exercise.
func GoalKind(t ExerciseType) string {
	switch t {
	case Running:
		return KindDistance
	case AMRAP, EMOM:
		return KindDuration
	default:
		return KindRound
	}
}

// PerformanceType is the kind of performance a training on this exercise records.
func PerformanceType(t ExerciseType) string {
	switch t {
	case ForTime, Running:
		return KindDuration
	case AMRAP, EMOM:
		return KindRound
	default:
		return KindAnyone
	}
}

// Setting is one numeric setting of a movement (repetitions, poids, ...).
type Setting struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Movement is a catalog movement placed in an exercise at a 1-based order.
type Movement struct {
	Name     string    `json:"name"`
	Order    int       `json:"order"`
	Settings []Setting `json:"settings"`
}

// Exercise is the object composed by the creation wizard and posted to
// /app/add-exercise/.
type Exercise struct {
	ID           int64        `json:"id,omitempty"`
	Name         string       `json:"name"`
	ExerciseType ExerciseType `json:"exerciseType"`
	Description  string       `json:"description"`
	Founder      string       `json:"founder"`
	GoalType     string       `json:"goalType"`
	GoalValue    float64      `json:"goalValue"`
	Movements    []Movement   `json:"movements"`
}

// CatalogEntry is a movement as served by /app/get-all-movements/.
type CatalogEntry struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Equipment string   `json:"equipment,omitempty"`
	Settings  []string `json:"settings"`
}

// FindCatalogEntry returns the entry whose name equals name. "none" and
// unknown names resolve to an empty entry with no settings.
func FindCatalogEntry(catalog []CatalogEntry, name string) (CatalogEntry, bool) {
	if name == "" || name == NoMovement {
		return CatalogEntry{}, false
	}
	for _, e := range catalog {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// NoMovement is the placeholder option value of a movement selector.
const NoMovement = "none"
