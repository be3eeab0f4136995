package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userKey contextKey = iota

type caller struct {
	id    int
	admin bool
}

// UserFromContext extracts the user injected by the transport layer. It
// defaults to user 1, not admin.
func UserFromContext(ctx context.Context) (userID int, isAdmin bool) {
	if c, ok := ctx.Value(userKey).(caller); ok {
		return c.id, c.admin
	}
	return 1, false
}

// WithUser returns a context carrying the calling user.
func WithUser(ctx context.Context, userID int, isAdmin bool) context.Context {
	return context.WithValue(ctx, userKey, caller{id: userID, admin: isAdmin})
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("fitlg", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("fitlg workout programming server. List the movement catalog, browse and create exercises (AMRAP, EMOM, FORTIME, RUNNING...) and review trainings. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListMovements, Handler: h.listMovements},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExercise, Handler: h.getExercise},
		server.ServerTool{Tool: toolCreateExercise, Handler: h.createExercise},
		server.ServerTool{Tool: toolListTrainings, Handler: h.listTrainings},
	)

	s.AddResources(
		server.ServerResource{Resource: resMovementCatalog, Handler: h.movementCatalog},
	)

	return s
}

// NewHTTPHandler serves s over streamable HTTP. The user set on the request
// context by the HTTP middleware reaches the tool handlers.
func NewHTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			id, admin := UserFromContext(r.Context())
			return WithUser(ctx, id, admin)
		}),
	)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resMovementCatalog = mcp.NewResource(
	"fitlg://movement_catalog",
	"Movement Catalog",
	mcp.WithResourceDescription("Every movement that can be placed in an exercise, with its equipment and the settings it takes (repetitions, poids, distance...)"),
	mcp.WithMIMEType("application/json"),
)
