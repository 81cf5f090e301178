package main

import (
	"context"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/ThinkInAIXYZ/go-mcp/transport"
	"github.com/rs/zerolog"
)

// Version and BuildTime are set via ldflags during build
var Version = "dev"
var BuildTime = "unknown"

// mcpLoggerAdapter bridges go-mcp's logger interface onto zerolog.
type mcpLoggerAdapter struct {
	log zerolog.Logger
}

func (l *mcpLoggerAdapter) Debugf(format string, a ...any) { l.log.Debug().Msgf(format, a...) }
func (l *mcpLoggerAdapter) Infof(format string, a ...any)  { l.log.Info().Msgf(format, a...) }
func (l *mcpLoggerAdapter) Warnf(format string, a ...any)  { l.log.Warn().Msgf(format, a...) }
func (l *mcpLoggerAdapter) Errorf(format string, a ...any) { l.log.Error().Msgf(format, a...) }

// MCPServer exposes the container dashboard over the Model Context Protocol
// using StreamableHTTPServerTransport, so agents can query and act on the
// same snapshot the web UI sees.
type MCPServer struct {
	svc       *containerService
	stream    *containersStream
	mcpServer *server.Server
	port      int
	log       zerolog.Logger
}

// NewMCPServer creates the MCP server and registers its tools.
func NewMCPServer(svc *containerService, stream *containersStream, port int) (*MCPServer, error) {
	s := &MCPServer{
		svc:    svc,
		stream: stream,
		port:   port,
		log:    componentLogger("mcp"),
	}

	// Stateful mode so SSE sessions survive across tool calls
	mcpTransport := transport.NewStreamableHTTPServerTransport(
		fmt.Sprintf(":%d", port),
		transport.WithStreamableHTTPServerTransportOptionEndpoint("/mcp"),
		transport.WithStreamableHTTPServerTransportOptionStateMode(transport.Stateful),
		transport.WithStreamableHTTPServerTransportOptionLogger(&mcpLoggerAdapter{log: s.log}),
	)

	var err error
	s.mcpServer, err = server.NewServer(
		mcpTransport,
		server.WithServerInfo(protocol.Implementation{
			Name:    "docker-webui-mcp",
			Version: Version,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Start runs the MCP server (blocking call).
func (s *MCPServer) Start() error {
	s.log.Info().Int("port", s.port).Msg("MCP server listening on /mcp")
	return s.mcpServer.Run()
}

// Shutdown gracefully shuts down the MCP server.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down MCP server")
	return s.mcpServer.Shutdown(ctx)
}

// GetPort returns the MCP server port.
func (s *MCPServer) GetPort() int {
	return s.port
}

// registerTools registers all MCP tools
func (s *MCPServer) registerTools() error {
	listContainersTool, err := protocol.NewTool(
		"list_containers",
		"List Docker containers with liveness, CPU and memory usage",
		ListContainersArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create list_containers tool: %w", err)
	}
	s.mcpServer.RegisterTool(listContainersTool, s.handleListContainersTool)

	getMetricsTool, err := protocol.NewTool(
		"get_metrics",
		"Get CPU percentage and memory usage for specific containers",
		GetMetricsArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create get_metrics tool: %w", err)
	}
	s.mcpServer.RegisterTool(getMetricsTool, s.handleGetMetricsTool)

	getLogsTool, err := protocol.NewTool(
		"get_logs",
		"Fetch the tail of a Docker container's logs",
		GetLogsArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create get_logs tool: %w", err)
	}
	s.mcpServer.RegisterTool(getLogsTool, s.handleGetLogsTool)

	startContainerTool, err := protocol.NewTool(
		"start_container",
		"Start a stopped Docker container",
		ContainerActionArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create start_container tool: %w", err)
	}
	s.mcpServer.RegisterTool(startContainerTool, s.handleStartContainerTool)

	stopContainerTool, err := protocol.NewTool(
		"stop_container",
		"Stop a running Docker container",
		ContainerActionArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create stop_container tool: %w", err)
	}
	s.mcpServer.RegisterTool(stopContainerTool, s.handleStopContainerTool)

	restartContainerTool, err := protocol.NewTool(
		"restart_container",
		"Restart a Docker container",
		ContainerActionArgs{},
	)
	if err != nil {
		return fmt.Errorf("failed to create restart_container tool: %w", err)
	}
	s.mcpServer.RegisterTool(restartContainerTool, s.handleRestartContainerTool)

	return nil
}
