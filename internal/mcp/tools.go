package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
)

func exerciseTypeNames() []string {
	names := make([]string, 0, len(models.ExerciseTypes))
	for _, t := range models.ExerciseTypes {
		names = append(names, string(t))
	}
	return names
}

// --- Tool definitions ---

var toolListMovements = mcp.NewTool("list_movements",
	mcp.WithDescription("List the movement catalog: every movement with its equipment and the names of the settings it takes."),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the user's exercises and the default exercises, each with its goal, movements and the user's personal best."),
)

var toolGetExercise = mcp.NewTool("get_exercise",
	mcp.WithDescription("Get one exercise with its ordered movements, their settings and the user's personal best."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Exercise ID")),
)

var toolCreateExercise = mcp.NewTool("create_exercise",
	mcp.WithDescription("Create an exercise for the user. Goal values are meters for RUNNING (values below 100 are read as km), seconds for AMRAP and EMOM, rounds otherwise. Returns the new exercise ID."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("exercise_type", mcp.Required(), mcp.Description("Exercise type"), mcp.Enum(exerciseTypeNames()...)),
	mcp.WithString("description", mcp.Description("Free text description")),
	mcp.WithNumber("goal_value", mcp.Description("Goal value, see the tool description for units. Defaults to 0.")),
	mcp.WithString("movements", mcp.Description(`JSON array of movements, e.g. [{"name":"burpees","order":1,"settings":[{"name":"repetitions","value":10}]}]. Names come from list_movements. order defaults to the array position.`)),
)

var toolListTrainings = mcp.NewTool("list_trainings",
	mcp.WithDescription("List the user's trainings, newest first, with their exercise, performance and done/personal best counters."),
)

// --- Tool handlers ---

func (h *handlers) listMovements(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.Catalog(ctx)
	if err != nil {
		h.log.Error("mcp list_movements", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, _ := UserFromContext(ctx)
	list, err := h.ds.Exercises(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list)
}

func (h *handlers) getExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	uid, _ := UserFromContext(ctx)

	ex, err := h.ds.Exercise(ctx, int64(id), uid)
	if errors.Is(err, program.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("exercise %d not found", id)), nil
	}
	if err != nil {
		h.log.Error("mcp get_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(ex)
}

// movementArg is a movement as passed to create_exercise. Setting values
// may be JSON numbers or numeric strings.
type movementArg struct {
	Name     string `json:"name"`
	Order    int    `json:"order"`
	Settings []struct {
		Name  string      `json:"name"`
		Value json.Number `json:"value"`
	} `json:"settings"`
}

func parseMovements(raw string) ([]models.Movement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []models.Movement{}, nil
	}
	var args []movementArg
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("movements must be a JSON array: %w", err)
	}
	out := make([]models.Movement, 0, len(args))
	for i, a := range args {
		mv := models.Movement{Name: a.Name, Order: a.Order, Settings: []models.Setting{}}
		if mv.Order == 0 {
			mv.Order = i + 1
		}
		for _, s := range a.Settings {
			mv.Settings = append(mv.Settings, models.Setting{Name: s.Name, Value: s.Value.String()})
		}
		out = append(out, mv)
	}
	return out, nil
}

func (h *handlers) createExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	exType, err := req.RequireString("exercise_type")
	if err != nil {
		return mcp.NewToolResultError("exercise_type parameter is required"), nil
	}
	movements, err := parseMovements(req.GetString("movements", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t := models.ExerciseType(strings.ToUpper(exType))
	ex := models.Exercise{
		Name:         name,
		ExerciseType: t,
		Description:  req.GetString("description", ""),
		GoalType:     models.GoalTypeLabel(t),
		GoalValue:    req.GetFloat("goal_value", 0),
		Movements:    movements,
	}

	uid, admin := UserFromContext(ctx)
	id, err := h.ds.RegisterExercise(ctx, ex, uid, admin)
	var verr *program.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError("invalid exercise: " + verr.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp create_exercise", "error", err)
		return mcp.NewToolResultError("create failed: " + err.Error()), nil
	}
	return jsonResult(map[string]int64{"id": id})
}

func (h *handlers) listTrainings(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, _ := UserFromContext(ctx)
	list, err := h.ds.Trainings(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_trainings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
