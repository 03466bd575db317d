// ABOUTME: MCP server exposing read-only gymbot training statistics.
// ABOUTME: Wraps the MCP server around the read side of the store.
package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/gymbot/internal/models"
	"github.com/harperreed/gymbot/internal/storage"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

var errNoUser = errors.New("user_id is required (no default user configured)")

// Store is the read side the MCP tools query.
type Store interface {
	Summary(ctx context.Context, userID int64, start, end time.Time) (*models.Summary, error)
	PersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error)
	LastCompletedWorkouts(ctx context.Context, userID int64, limit int) ([]models.CompletedWorkout, error)
	ExerciseHistory(ctx context.Context, userID int64, limit, offset int) ([]*models.ExerciseEntry, error)
	NextMuscleGroup(ctx context.Context, userID int64) (string, error)
	RecentGroups(ctx context.Context, userID int64, limit int) ([]string, error)
}

var _ Store = (*storage.DB)(nil)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer   *mcp.Server
	store       Store
	defaultUser int64
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultUser sets the user that resources and tools without user_id read.
func WithDefaultUser(userID int64) Option {
	return func(s *Server) { s.defaultUser = userID }
}

// WithClock overrides the clock used for summary windows.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new MCP server over store.
func NewServer(store Store, opts ...Option) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gymbot",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) user(id int64) (int64, error) {
	if id != 0 {
		return id, nil
	}
	if s.defaultUser == 0 {
		return 0, errNoUser
	}
	return s.defaultUser, nil
}
