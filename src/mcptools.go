package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
)

func textResult(text string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func jsonResult(v interface{}) (*protocol.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return textResult(string(out)), nil
}

// handleListContainersTool implements the list_containers tool
func (s *MCPServer) handleListContainersTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.log.Debug().Str("tool", request.Name).Msg("tool call")

	args := new(ListContainersArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if !args.WithoutMetrics {
		// Same path as the web UI: reuse whatever snapshot is cached
		containers, err := s.stream.getSnapshot(ctx, -1)
		if err != nil {
			return nil, fmt.Errorf("failed to load containers: %w", err)
		}
		return jsonResult(containers)
	}

	containers, err := s.svc.listSummaries(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load containers: %w", err)
	}
	return jsonResult(containers)
}

// handleGetMetricsTool implements the get_metrics tool
func (s *MCPServer) handleGetMetricsTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.log.Debug().Str("tool", request.Name).Msg("tool call")

	args := new(GetMetricsArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	metrics, err := s.svc.metrics(ctx, args.Names)
	if err != nil {
		return nil, fmt.Errorf("failed to collect metrics: %w", err)
	}
	if len(metrics) == 0 {
		return textResult("No containers found"), nil
	}
	return jsonResult(metrics)
}

// handleGetLogsTool implements the get_logs tool
func (s *MCPServer) handleGetLogsTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	s.log.Debug().Str("tool", request.Name).Msg("tool call")

	args := new(GetLogsArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if args.Tail <= 0 {
		args.Tail = 200
	}

	logs, err := s.svc.logs(ctx, args.Name, args.Tail)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for %s: %w", args.Name, err)
	}
	return textResult(logs), nil
}

// runAction executes one lifecycle action and pokes the stream so web
// subscribers see the result immediately.
func (s *MCPServer) runAction(ctx context.Context, request *protocol.CallToolRequest, action string) (*protocol.CallToolResult, error) {
	s.log.Debug().Str("tool", request.Name).Msg("tool call")

	args := new(ContainerActionArgs)
	if err := protocol.VerifyAndUnmarshal(request.RawArguments, args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if err := s.svc.action(ctx, args.Name, action); err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, args.Name, err)
	}
	s.stream.poke()

	return textResult(fmt.Sprintf("%s: %s ok", action, args.Name)), nil
}

// handleStartContainerTool implements the start_container tool
func (s *MCPServer) handleStartContainerTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.runAction(ctx, request, "start")
}

// handleStopContainerTool implements the stop_container tool
func (s *MCPServer) handleStopContainerTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.runAction(ctx, request, "stop")
}

// handleRestartContainerTool implements the restart_container tool
func (s *MCPServer) handleRestartContainerTool(ctx context.Context, request *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.runAction(ctx, request, "restart")
}
