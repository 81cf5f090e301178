package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// Action errors. Invalid actions are rejected before any daemon call; unknown
// container names surface as errContainerNotFound so the HTTP layer can map
// them to distinct statuses.
var (
	errContainerNotFound = errors.New("container not found")
	errInvalidAction     = errors.New("invalid operation")
)

var validActions = map[string]bool{
	"start":   true,
	"stop":    true,
	"restart": true,
}

// containerAPI is the slice of the Docker client the dashboard relies on.
// *client.Client satisfies it; tests substitute a fake.
type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerStats(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
}

// newDockerClient builds a client from the standard DOCKER_* environment.
func newDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// listContainers returns containers in the order the daemon reports them.
func listContainers(ctx context.Context, api containerAPI, all bool) ([]container.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return api.ContainerList(ctx, container.ListOptions{All: all})
}

// resolveContainer looks up a container by name (or id) and maps the SDK's
// not-found error onto errContainerNotFound.
func resolveContainer(ctx context.Context, api containerAPI, name string) (container.InspectResponse, error) {
	inspect, err := api.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return container.InspectResponse{}, fmt.Errorf("%w: %s", errContainerNotFound, name)
		}
		return container.InspectResponse{}, err
	}
	return inspect, nil
}

// containerAction validates and executes start/stop/restart on a container
// resolved by name. On success it pauses for the configured settle delay so
// the daemon state converges before the next snapshot read. Callers that want
// streaming clients to see the change immediately poke the stream themselves;
// this function knows nothing about the cache.
func containerAction(ctx context.Context, api containerAPI, name, action string, settleDelay time.Duration) error {
	if !validActions[action] {
		return fmt.Errorf("%w: %s", errInvalidAction, action)
	}

	inspect, err := resolveContainer(ctx, api, name)
	if err != nil {
		return err
	}

	actionCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	timeout := actionStopTimeoutSec
	switch action {
	case "start":
		err = api.ContainerStart(actionCtx, inspect.ID, container.StartOptions{})
	case "stop":
		err = api.ContainerStop(actionCtx, inspect.ID, container.StopOptions{Timeout: &timeout})
	case "restart":
		err = api.ContainerRestart(actionCtx, inspect.ID, container.StopOptions{Timeout: &timeout})
	}
	if err != nil {
		return err
	}

	if settleDelay > 0 {
		select {
		case <-time.After(settleDelay):
		case <-ctx.Done():
		}
	}
	return nil
}

// fetchStatsOnce grabs a single stats sample for one container. Failures are
// soft: the caller stores nil and the dashboard shows missing metrics.
func fetchStatsOnce(ctx context.Context, api containerAPI, containerID string) (*container.StatsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := api.ContainerStats(ctx, containerID, false)
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	var v container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// fetchContainerLogs returns the last tail lines of a container's logs as
// text. The tail is clamped to [1, maxTail]. Fetch or decode failures degrade
// to a placeholder string instead of an error: logs are enrichment, and a
// broken log endpoint must not hide the container from the dashboard.
func fetchContainerLogs(ctx context.Context, api containerAPI, name string, tail, maxTail int) (string, error) {
	if tail < 1 {
		tail = 1
	}
	if tail > maxTail {
		tail = maxTail
	}

	inspect, err := resolveContainer(ctx, api, name)
	if err != nil {
		return "", err
	}

	logsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	reader, err := api.ContainerLogs(logsCtx, inspect.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return fmt.Sprintf("[error] %v", err), nil
	}
	defer reader.Close()

	lines := demuxLogStream(reader)
	return strings.Join(lines, "\n"), nil
}

// demuxLogStream parses the multiplexed Docker log stream into lines.
// Each frame carries an 8 byte header with the payload size in bytes 4-7.
func demuxLogStream(reader io.Reader) []string {
	const (
		minBufSize = 8192
		maxBufSize = 1024 * 1024
	)

	lines := []string{}
	buf := make([]byte, minBufSize)
	incompleteData := []byte{}

	for {
		n, err := reader.Read(buf)
		if n > 0 {
			// Combine incomplete data from the previous read
			data := append(incompleteData, buf[:n]...)
			incompleteData = []byte{}
			offset := 0

			for offset < len(data) {
				// Need at least 8 bytes for a header
				if offset+8 > len(data) {
					incompleteData = data[offset:]
					break
				}

				// Payload size, 4 bytes big-endian
				size := int(data[offset+4])<<24 | int(data[offset+5])<<16 | int(data[offset+6])<<8 | int(data[offset+7])

				// Guard against corrupted streams
				if size < 0 || size > maxBufSize {
					return lines
				}

				frameEnd := offset + 8 + size
				if frameEnd > len(data) {
					// Incomplete frame - save for next read
					incompleteData = data[offset:]
					if len(incompleteData)+minBufSize > len(buf) && len(buf) < maxBufSize {
						newSize := min(len(buf)*2, maxBufSize)
						buf = make([]byte, newSize)
					}
					break
				}

				payload := data[offset+8 : frameEnd]
				lines = append(lines, strings.TrimRight(string(payload), "\n"))
				offset = frameEnd
			}
		}
		if err != nil {
			return lines
		}
	}
}

// containerName returns the primary name without the leading slash.
func containerName(c container.Summary) string {
	if len(c.Names) == 0 {
		if len(c.ID) >= 12 {
			return c.ID[:12]
		}
		return c.ID
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

// firstPublishedPort returns the first host port a container publishes, or 0.
func firstPublishedPort(c container.Summary) uint16 {
	for _, p := range c.Ports {
		if p.PublicPort != 0 {
			return p.PublicPort
		}
	}
	return 0
}

// buildExecCommand renders the ready-to-copy shell command for a container
// exec session, targeting Windows Terminal / PowerShell hosts running WSL.
func buildExecCommand(name, distro, shell string) string {
	return fmt.Sprintf("wsl -d %s docker exec -it %s %s", distro, name, shell)
}
