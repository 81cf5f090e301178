package main

import (
	"context"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
)

// statsFetchFunc fetches one stats sample. Injected so tests can count and
// fake daemon calls.
type statsFetchFunc func(ctx context.Context, containerID string) (*container.StatsResponse, error)

type statsCacheEntry struct {
	capturedAt time.Time
	stats      *container.StatsResponse // nil when the fetch failed
}

// statsCache is a short-TTL cache of raw container stats. Many consumers
// (HTTP pulls, the broadcast loop, MCP tools) ask for the same containers
// within a refresh window; the cache collapses those into one daemon call per
// container per TTL. Misses are fetched in parallel, bounded by a semaphore
// so a cold cache with many containers cannot hammer the daemon.
type statsCache struct {
	fetch statsFetchFunc
	ttl   time.Duration

	mu      sync.Mutex
	entries map[string]statsCacheEntry

	// Bounds concurrent stats calls against the daemon
	sem chan struct{}
}

func newStatsCache(api containerAPI) *statsCache {
	return newStatsCacheWithFetch(func(ctx context.Context, containerID string) (*container.StatsResponse, error) {
		return fetchStatsOnce(ctx, api, containerID)
	})
}

func newStatsCacheWithFetch(fetch statsFetchFunc) *statsCache {
	return &statsCache{
		fetch:   fetch,
		ttl:     statsCacheTTL,
		entries: make(map[string]statsCacheEntry),
		sem:     make(chan struct{}, maxConcurrentStats),
	}
}

// getOrFetch returns a stats sample (or nil) per container id. Containers
// that are not running map to nil without touching the daemon. Expired
// entries are evicted lazily on lookup; there is no background sweep.
func (c *statsCache) getOrFetch(ctx context.Context, containers []container.Summary) map[string]*container.StatsResponse {
	statsMap := make(map[string]*container.StatsResponse, len(containers))
	var toFetch []string

	now := time.Now()
	c.mu.Lock()
	for _, cont := range containers {
		if cont.State != "running" {
			statsMap[cont.ID] = nil
			continue
		}
		entry, ok := c.entries[cont.ID]
		if ok && now.Sub(entry.capturedAt) <= c.ttl {
			statsMap[cont.ID] = entry.stats
			continue
		}
		if ok {
			delete(c.entries, cont.ID)
		}
		toFetch = append(toFetch, cont.ID)
	}
	c.mu.Unlock()

	if len(toFetch) == 0 {
		return statsMap
	}

	type fetchResult struct {
		id    string
		stats *container.StatsResponse
	}
	results := make(chan fetchResult, len(toFetch))

	var wg sync.WaitGroup
	for _, id := range toFetch {
		wg.Add(1)
		containerID := id
		safeGo("statscache-fetch-"+containerID, func() {
			defer wg.Done()

			c.sem <- struct{}{}
			defer func() { <-c.sem }()

			stats, err := c.fetch(ctx, containerID)
			if err != nil {
				// Soft failure: record nil, metrics show as missing
				stats = nil
			}
			results <- fetchResult{id: containerID, stats: stats}
		})
	}
	wg.Wait()
	close(results)

	c.mu.Lock()
	for r := range results {
		c.entries[r.id] = statsCacheEntry{capturedAt: time.Now(), stats: r.stats}
		statsMap[r.id] = r.stats
	}
	c.mu.Unlock()

	return statsMap
}
