package main

// ListContainersArgs defines arguments for the list_containers tool
type ListContainersArgs struct {
	WithoutMetrics bool `json:"without_metrics,omitempty" description:"Skip CPU and memory metrics for a faster listing (default: false, metrics served from the shared snapshot cache)"`
}

// GetMetricsArgs defines arguments for the get_metrics tool
type GetMetricsArgs struct {
	Names []string `json:"names,omitempty" description:"Container names to fetch metrics for. Leave empty for all containers."`
}

// GetLogsArgs defines arguments for the get_logs tool
type GetLogsArgs struct {
	Name string `json:"name" description:"Container name"`
	Tail int    `json:"tail,omitempty" description:"Number of trailing log lines (default: 200)"`
}

// ContainerActionArgs defines arguments for container action tools (start, stop, restart)
type ContainerActionArgs struct {
	Name string `json:"name" description:"Container name to act on"`
}
