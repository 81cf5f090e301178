package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docker/docker/api/types/container"
)

// ContainerSummary is one dashboard row. A refresh rebuilds the whole slice
// from the daemon's current list, in daemon order; rows are never mutated in
// place.
type ContainerSummary struct {
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Link   *string  `json:"link"`
	CPU    *float64 `json:"cpu"`
	MemMB  *float64 `json:"mem_mb"`
}

// ContainerMetrics is the metrics-only lookup result for one container.
type ContainerMetrics struct {
	CPU   *float64 `json:"cpu"`
	MemMB *float64 `json:"mem_mb"`
}

// streamMessage is the wire shape pushed to streaming subscribers. The type
// discriminator lets clients distinguish container updates from future
// message kinds on the same connection.
type streamMessage struct {
	Type       string             `json:"type"`
	Containers []ContainerSummary `json:"containers"`
}

// containerService bundles the runtime adapter, the stats cache and the
// dashboard configuration behind the operations the surfaces call.
type containerService struct {
	api   containerAPI
	stats *statsCache
	cfg   Config
}

func newContainerService(api containerAPI, cfg Config) *containerService {
	return &containerService{
		api:   api,
		stats: newStatsCache(api),
		cfg:   cfg,
	}
}

// listSummaries builds the dashboard rows. With includeMetrics=false the
// stats cache is skipped entirely and cpu/mem stay null, which makes the
// listing call fast for callers that only need identity and status.
func (s *containerService) listSummaries(ctx context.Context, includeMetrics bool) ([]ContainerSummary, error) {
	containers, err := listContainers(ctx, s.api, true)
	if err != nil {
		return nil, err
	}

	var statsMap map[string]*container.StatsResponse
	if includeMetrics {
		statsMap = s.stats.getOrFetch(ctx, containers)
	}

	result := make([]ContainerSummary, 0, len(containers))
	for _, c := range containers {
		summary := ContainerSummary{
			Name:   containerName(c),
			Status: c.State,
		}

		if port := firstPublishedPort(c); port != 0 {
			link := fmt.Sprintf("%s://%s:%d", s.cfg.LinkScheme, s.cfg.LinkHost, port)
			summary.Link = &link
		}

		if includeMetrics {
			if stats := statsMap[c.ID]; stats != nil {
				if cpu := calcCPUPercent(stats); cpu != nil {
					rounded := roundTo(*cpu, 1)
					summary.CPU = &rounded
				}
				if mem := calcMemMB(stats); mem != nil {
					rounded := roundTo(*mem, 0)
					summary.MemMB = &rounded
				}
			}
		}

		result = append(result, summary)
	}
	return result, nil
}

// metrics returns cpu/mem for the named containers, or for every container
// when names is empty. Unknown names are simply absent from the result.
func (s *containerService) metrics(ctx context.Context, names []string) (map[string]ContainerMetrics, error) {
	containers, err := listContainers(ctx, s.api, true)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	if len(wanted) > 0 {
		filtered := containers[:0]
		for _, c := range containers {
			if wanted[containerName(c)] {
				filtered = append(filtered, c)
			}
		}
		containers = filtered
	}

	statsMap := s.stats.getOrFetch(ctx, containers)

	result := make(map[string]ContainerMetrics, len(containers))
	for _, c := range containers {
		m := ContainerMetrics{}
		if stats := statsMap[c.ID]; stats != nil {
			if cpu := calcCPUPercent(stats); cpu != nil {
				rounded := roundTo(*cpu, 1)
				m.CPU = &rounded
			}
			if mem := calcMemMB(stats); mem != nil {
				rounded := roundTo(*mem, 0)
				m.MemMB = &rounded
			}
		}
		result[containerName(c)] = m
	}
	return result, nil
}

// collectSnapshot produces the serialized stream payload plus the summary
// slice backing it. This is the collector the snapshot cache refreshes with.
func (s *containerService) collectSnapshot(ctx context.Context) (string, []ContainerSummary, error) {
	data, err := s.listSummaries(ctx, true)
	if err != nil {
		return "", nil, err
	}
	payload, err := json.Marshal(streamMessage{Type: "containers", Containers: data})
	if err != nil {
		return "", nil, err
	}
	return string(payload), data, nil
}

// action runs start/stop/restart by name with the configured settle delay.
func (s *containerService) action(ctx context.Context, name, action string) error {
	return containerAction(ctx, s.api, name, action, s.cfg.ActionDelay)
}

// logs returns the tail of a container's logs as text.
func (s *containerService) logs(ctx context.Context, name string, tail int) (string, error) {
	return fetchContainerLogs(ctx, s.api, name, tail, s.cfg.LogMaxTail)
}

// cloneSummaries deep-copies a summary slice so callers cannot mutate the
// cached snapshot through shared pointers.
func cloneSummaries(in []ContainerSummary) []ContainerSummary {
	out := make([]ContainerSummary, len(in))
	for i, c := range in {
		out[i] = ContainerSummary{Name: c.Name, Status: c.Status}
		if c.Link != nil {
			link := *c.Link
			out[i].Link = &link
		}
		if c.CPU != nil {
			cpu := *c.CPU
			out[i].CPU = &cpu
		}
		if c.MemMB != nil {
			mem := *c.MemMB
			out[i].MemMB = &mem
		}
	}
	return out
}
