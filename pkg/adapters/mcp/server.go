package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	smarttable "github.com/smart-table/smart-table-server"
	"github.com/smart-table/smart-table-server/internal/logging"
	httpadapter "github.com/smart-table/smart-table-server/pkg/adapters/http"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/smart-table/smart-table-server/pkg/schema"
)

const specURI = "smarttable://openapi"

// QueryArgs are the arguments of the query_table tool.
type QueryArgs struct {
	State  map[string]any `json:"state,omitempty"`
	Page   int            `json:"page,omitempty"`
	Size   int            `json:"size,omitempty"`
	Sort   string         `json:"sort,omitempty"`
	Desc   bool           `json:"desc,omitempty"`
	Search string         `json:"search,omitempty"`
}

// Server exposes a query function as an MCP server.
type Server[T any] struct {
	query     ports.QueryFunc[T]
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*config)

type config struct {
	name   string
	logger *slog.Logger
}

// WithName sets the name the server announces (default "smarttable-mcp").
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger of the server.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// NewServer creates a new MCP Server instance answering with query.
func NewServer[T any](query ports.QueryFunc[T], opts ...Option) *Server[T] {
	cfg := &config{name: "smarttable-mcp", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Server[T]{
		query:     query,
		logger:    cfg.logger,
		mcpServer: server.NewMCPServer(cfg.name, strings.TrimSpace(smarttable.Version), server.WithToolCapabilities(false)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server[T]) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server[T]) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is done.
func (s *Server[T]) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server[T]) registerTools() {
	queryTool := mcp.NewTool("query_table",
		mcp.WithDescription("Compute one page of the table. Pass a full table state, or use the shortcuts (page, size, sort, desc, search), which override it."),
		mcp.WithObject("state", mcp.Description("Table state: {sort: {pointer, direction}, filter: {path: [{value, operator, type}]}, search: {value, scope, flags}, slice: {page, size}}")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("size", mcp.Description("Page size")),
		mcp.WithString("sort", mcp.Description("Pointer of the field to sort by")),
		mcp.WithBoolean("desc", mcp.Description("Sort in descending order")),
		mcp.WithString("search", mcp.Description("Regular expression searched in the search scope of the state")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[ports.QueryResult[T]](),
	)
	s.mcpServer.AddTool(queryTool, mcp.NewStructuredToolHandler(s.handleQuery))
}

func (s *Server[T]) handleQuery(ctx context.Context, _ mcp.CallToolRequest, args QueryArgs) (ports.QueryResult[T], error) {
	state, err := args.TableState()
	if err != nil {
		return ports.QueryResult[T]{}, err
	}
	result, err := s.query(ctx, state)
	if err != nil {
		s.logger.Error("MCP query failed", "error", err)
		return ports.QueryResult[T]{}, fmt.Errorf("query failed: %w", err)
	}
	if result.Data == nil {
		result.Data = []domain.DisplayItem[T]{}
	}
	return result, nil
}

// TableState builds the table state the arguments describe.
func (a QueryArgs) TableState() (domain.TableState, error) {
	doc := a.State
	if a.Page > 0 {
		doc = schema.Set(doc, "slice.page", a.Page)
	}
	if a.Size > 0 {
		doc = schema.Set(doc, "slice.size", a.Size)
	}
	if a.Sort != "" {
		direction := domain.Asc
		if a.Desc {
			direction = domain.Desc
		}
		doc = schema.Set(doc, "sort", map[string]any{"pointer": a.Sort, "direction": string(direction)})
	}
	if a.Search != "" {
		doc = schema.Set(doc, "search.value", a.Search)
	}
	return schema.Decode(doc)
}

func (s *Server[T]) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(specURI, "Query API description",
		mcp.WithMIMEType("application/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      specURI,
				MIMEType: "application/yaml",
				Text:     string(httpadapter.RawSpec()),
			},
		}, nil
	})
}
