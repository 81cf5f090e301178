package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/docker/docker/api/types/container"
)

func newTestMCPServer(api *fakeDockerAPI) *MCPServer {
	svc := newContainerService(api, testConfig())
	stream := newContainersStream(svc.collectSnapshot, time.Minute)
	// protocol.VerifyAndUnmarshal needs the argument schemas that
	// protocol.NewTool caches during registerTools, which this harness skips.
	for name, args := range map[string]any{
		"list_containers": ListContainersArgs{},
		"get_metrics":     GetMetricsArgs{},
		"get_logs":        GetLogsArgs{},
		"action":          ContainerActionArgs{},
	} {
		if _, err := protocol.NewTool(name, name, args); err != nil {
			panic(err)
		}
	}
	return &MCPServer{svc: svc, stream: stream, port: defaultMCPPort}
}

func toolRequest(name, args string) *protocol.CallToolRequest {
	return &protocol.CallToolRequest{Name: name, RawArguments: json.RawMessage(args)}
}

func resultText(t *testing.T, result *protocol.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("result has %d content blocks, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*protocol.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *protocol.TextContent", result.Content[0])
	}
	return text.Text
}

// TestListContainersTool tests the list_containers tool output
func TestListContainersTool(t *testing.T) {
	api := fakeWithContainers()
	api.stats = map[string]*container.StatsResponse{
		"aaa111": statsFor50Pct100MB(),
	}
	s := newTestMCPServer(api)

	result, err := s.handleListContainersTool(context.Background(), toolRequest("list_containers", `{}`))
	if err != nil {
		t.Fatalf("list_containers: %v", err)
	}

	var rows []ContainerSummary
	if err := json.Unmarshal([]byte(resultText(t, result)), &rows); err != nil {
		t.Fatalf("tool output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "web" || rows[0].CPU == nil {
		t.Errorf("row 0 = %+v, want web with metrics", rows[0])
	}
}

// TestGetMetricsTool tests the get_metrics tool with a name filter
func TestGetMetricsTool(t *testing.T) {
	api := fakeWithContainers()
	api.stats = map[string]*container.StatsResponse{
		"aaa111": statsFor50Pct100MB(),
	}
	s := newTestMCPServer(api)

	result, err := s.handleGetMetricsTool(context.Background(), toolRequest("get_metrics", `{"names":["web"]}`))
	if err != nil {
		t.Fatalf("get_metrics: %v", err)
	}

	var metrics map[string]ContainerMetrics
	if err := json.Unmarshal([]byte(resultText(t, result)), &metrics); err != nil {
		t.Fatalf("tool output is not valid JSON: %v", err)
	}
	if m, ok := metrics["web"]; !ok || m.CPU == nil || *m.CPU != 50.0 {
		t.Errorf("metrics = %v, want web with cpu 50.0", metrics)
	}
}

// TestGetLogsTool tests the get_logs tool and its name requirement
func TestGetLogsTool(t *testing.T) {
	api := fakeWithContainers()
	api.logsData = muxFrame("app started\n")
	s := newTestMCPServer(api)

	result, err := s.handleGetLogsTool(context.Background(), toolRequest("get_logs", `{"name":"web"}`))
	if err != nil {
		t.Fatalf("get_logs: %v", err)
	}
	if got := resultText(t, result); !strings.Contains(got, "app started") {
		t.Errorf("logs = %q, missing log line", got)
	}

	if _, err := s.handleGetLogsTool(context.Background(), toolRequest("get_logs", `{}`)); err == nil {
		t.Error("get_logs without a name should fail")
	}
}

// TestActionToolsPokesStream tests that lifecycle tools run the action and
// poke the broadcast loop
func TestActionToolsPokesStream(t *testing.T) {
	api := fakeWithContainers()
	s := newTestMCPServer(api)

	result, err := s.handleStartContainerTool(context.Background(), toolRequest("start_container", `{"name":"web"}`))
	if err != nil {
		t.Fatalf("start_container: %v", err)
	}
	if got := resultText(t, result); !strings.Contains(got, "web") {
		t.Errorf("result = %q, should name the container", got)
	}
	if api.startCalls != 1 {
		t.Errorf("startCalls = %d, want 1", api.startCalls)
	}
	select {
	case <-s.stream.force:
	default:
		t.Error("action tool did not poke the stream")
	}
}

// TestActionToolUnknownContainer tests error propagation from the runtime
func TestActionToolUnknownContainer(t *testing.T) {
	api := fakeWithContainers()
	s := newTestMCPServer(api)

	if _, err := s.handleStopContainerTool(context.Background(), toolRequest("stop_container", `{"name":"ghost"}`)); err == nil {
		t.Error("stop_container on unknown name should fail")
	}
	if api.stopCalls != 0 {
		t.Errorf("stopCalls = %d, want 0", api.stopCalls)
	}
}
