package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/docker/docker/api/types/container"
)

func testConfig() Config {
	return Config{
		AppTitle:       "Docker Dashboard",
		AppLocale:      "en",
		LinkScheme:     "http",
		LinkHost:       "localhost",
		LogDefaultTail: 200,
		LogMaxTail:     5000,
		ExecShell:      "bash",
		WSLDistro:      "Ubuntu",
	}
}

func statsFor50Pct100MB() *container.StatsResponse {
	return &container.StatsResponse{
		CPUStats: container.CPUStats{
			CPUUsage:    container.CPUUsage{TotalUsage: 500000000},
			SystemUsage: 1000000000,
			OnlineCPUs:  1,
		},
		MemoryStats: container.MemoryStats{Usage: 104857600},
	}
}

// TestListSummariesWithMetrics tests row building with live stats
func TestListSummariesWithMetrics(t *testing.T) {
	api := fakeWithContainers()
	api.stats = map[string]*container.StatsResponse{
		"aaa111": statsFor50Pct100MB(),
	}
	svc := newContainerService(api, testConfig())

	rows, err := svc.listSummaries(context.Background(), true)
	if err != nil {
		t.Fatalf("listSummaries: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	web := rows[0]
	if web.Name != "web" || web.Status != "running" {
		t.Errorf("row 0 = %+v, want name=web status=running", web)
	}
	if web.Link == nil || *web.Link != "http://localhost:8080" {
		t.Errorf("link = %v, want http://localhost:8080", web.Link)
	}
	if web.CPU == nil || *web.CPU != 50.0 {
		t.Errorf("cpu = %v, want 50.0", fmtPtr(web.CPU))
	}
	if web.MemMB == nil || *web.MemMB != 100.0 {
		t.Errorf("mem_mb = %v, want 100.0", fmtPtr(web.MemMB))
	}

	db := rows[1]
	if db.Name != "db" || db.Status != "exited" {
		t.Errorf("row 1 = %+v, want name=db status=exited", db)
	}
	if db.Link != nil || db.CPU != nil || db.MemMB != nil {
		t.Errorf("exited container carries link/metrics: %+v", db)
	}
}

// TestListSummariesWithoutMetrics tests that the fast path never touches the
// stats endpoint
func TestListSummariesWithoutMetrics(t *testing.T) {
	api := fakeWithContainers()
	svc := newContainerService(api, testConfig())

	rows, err := svc.listSummaries(context.Background(), false)
	if err != nil {
		t.Fatalf("listSummaries: %v", err)
	}
	if api.statsCalls != 0 {
		t.Errorf("statsCalls = %d, want 0 on the metrics-free path", api.statsCalls)
	}
	for _, r := range rows {
		if r.CPU != nil || r.MemMB != nil {
			t.Errorf("row %s carries metrics on the metrics-free path", r.Name)
		}
	}
}

// TestMetricsFiltersByName tests the named metrics lookup
func TestMetricsFiltersByName(t *testing.T) {
	api := fakeWithContainers()
	api.stats = map[string]*container.StatsResponse{
		"aaa111": statsFor50Pct100MB(),
	}
	svc := newContainerService(api, testConfig())

	result, err := svc.metrics(context.Background(), []string{"web", "ghost"})
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("got %d entries, want 1 (unknown names silently absent): %v", len(result), result)
	}
	m, ok := result["web"]
	if !ok {
		t.Fatal("missing entry for web")
	}
	if m.CPU == nil || *m.CPU != 50.0 {
		t.Errorf("cpu = %v, want 50.0", fmtPtr(m.CPU))
	}
}

// TestMetricsAllContainers tests the unfiltered lookup including stopped ones
func TestMetricsAllContainers(t *testing.T) {
	api := fakeWithContainers()
	svc := newContainerService(api, testConfig())

	result, err := svc.metrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d entries, want 2", len(result))
	}
	stopped := result["db"]
	if stopped.CPU != nil || stopped.MemMB != nil {
		t.Errorf("stopped container has metrics: %+v", stopped)
	}
}

// TestCollectSnapshotPayloadShape tests the serialized stream message
func TestCollectSnapshotPayloadShape(t *testing.T) {
	api := fakeWithContainers()
	svc := newContainerService(api, testConfig())

	payload, data, err := svc.collectSnapshot(context.Background())
	if err != nil {
		t.Fatalf("collectSnapshot: %v", err)
	}
	if len(data) != 2 {
		t.Errorf("data has %d rows, want 2", len(data))
	}

	var msg struct {
		Type       string `json:"type"`
		Containers []struct {
			Name   string   `json:"name"`
			Status string   `json:"status"`
			Link   *string  `json:"link"`
			CPU    *float64 `json:"cpu"`
			MemMB  *float64 `json:"mem_mb"`
		} `json:"containers"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if msg.Type != "containers" {
		t.Errorf("type = %q, want %q", msg.Type, "containers")
	}
	if len(msg.Containers) != 2 {
		t.Errorf("payload has %d containers, want 2", len(msg.Containers))
	}
}

// TestCloneSummariesIsDeep tests pointer isolation of cloned rows
func TestCloneSummariesIsDeep(t *testing.T) {
	link := "http://localhost:8080"
	cpu := 12.5
	orig := []ContainerSummary{{Name: "web", Status: "running", Link: &link, CPU: &cpu}}

	clone := cloneSummaries(orig)
	*clone[0].Link = "mutated"
	*clone[0].CPU = 99.9

	if *orig[0].Link != "http://localhost:8080" {
		t.Error("clone shares Link pointer with original")
	}
	if *orig[0].CPU != 12.5 {
		t.Error("clone shares CPU pointer with original")
	}
}
