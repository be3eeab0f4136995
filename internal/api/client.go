// Package api is the HTTP client of a remote fitlg instance. The exercise
// wizard uses it in remote mode and the stdio MCP server uses it to reach
// the data over the tailnet.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitlg/internal/models"
	"github.com/claude/fitlg/internal/program"
	"github.com/claude/fitlg/internal/wizard"
)

// APIKeyHeader carries the shared key checked by the JSON endpoints.
const APIKeyHeader = "X-API-Key"

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %s returned %d: %s", e.Path, e.Status, e.Body)
}

// Client calls the fitlg JSON endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: Client can drive the wizard.
var _ wizard.Backend = (*Client)(nil)

// NewClient creates a Client targeting baseURL. apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// Movements fetches the movement catalog.
func (c *Client) Movements(ctx context.Context) ([]models.CatalogEntry, error) {
	body, err := c.do(ctx, http.MethodGet, "/app/get-all-movements/", nil)
	if err != nil {
		return nil, err
	}
	var entries []models.CatalogEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("api: decode movements: %w", err)
	}
	return entries, nil
}

// AddExercise posts ex and returns the id the server assigned. A refusal
// of the exercise is returned as a *program.ValidationError.
func (c *Client) AddExercise(ctx context.Context, ex models.Exercise) (int64, error) {
	payload, err := json.Marshal(ex)
	if err != nil {
		return 0, fmt.Errorf("api: encode exercise: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/app/add-exercise/", bytes.NewReader(payload))
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusBadRequest {
		return 0, &program.ValidationError{Field: "exercise", Message: errorMessage(se.Body)}
	}
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(body, &id); err != nil {
		return 0, fmt.Errorf("api: decode exercise id: %w", err)
	}
	return id, nil
}

// errorMessage extracts the message of a {"error": ...} body.
func errorMessage(body string) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &e); err == nil && e.Error != "" {
		return e.Error
	}
	return body
}

// Catalog is Movements under the name the MCP data source uses.
func (c *Client) Catalog(ctx context.Context) ([]models.CatalogEntry, error) {
	return c.Movements(ctx)
}

// RegisterExercise posts ex. The server attributes it to the caller, so
// founderID and isAdmin are ignored.
func (c *Client) RegisterExercise(ctx context.Context, ex models.Exercise, _ int, _ bool) (int64, error) {
	return c.AddExercise(ctx, ex)
}

// Exercises fetches the exercise list of the caller.
func (c *Client) Exercises(ctx context.Context, _ int) (*program.ExerciseList, error) {
	body, err := c.do(ctx, http.MethodGet, "/app/exercices/?format=json", nil)
	if err != nil {
		return nil, err
	}
	var list program.ExerciseList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("api: decode exercises: %w", err)
	}
	return &list, nil
}

// Exercise fetches one exercise. A 404 maps to program.ErrNotFound.
func (c *Client) Exercise(ctx context.Context, id int64, _ int) (*program.ExerciseDetail, error) {
	path := "/app/exercise/" + strconv.FormatInt(id, 10) + "/?format=json"
	body, err := c.do(ctx, http.MethodGet, path, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return nil, fmt.Errorf("exercise %d: %w", id, program.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var ex program.ExerciseDetail
	if err := json.Unmarshal(body, &ex); err != nil {
		return nil, fmt.Errorf("api: decode exercise: %w", err)
	}
	return &ex, nil
}

// Trainings fetches the caller's trainings, newest first.
func (c *Client) Trainings(ctx context.Context, _ int) (*program.TrainingList, error) {
	body, err := c.do(ctx, http.MethodGet, "/app/trainings/?format=json", nil)
	if err != nil {
		return nil, err
	}
	var list program.TrainingList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("api: decode trainings: %w", err)
	}
	return &list, nil
}
