package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"ricecast/pkg/contracts"
)

// SessionCounter reports how many uploads are cached.
type SessionCounter interface {
	Len() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	sessions  SessionCounter
	capacity  int
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. capacity is the session
// store limit; zero means unbounded.
func NewHealthService(sessions SessionCounter, capacity int, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	version := contracts.GetVersionInfo()
	logger.Info("HealthService initialized",
		slog.String("version", version.Version),
		slog.String("git_commit", version.GitCommit))

	return &HealthService{
		version:   version,
		sessions:  sessions,
		capacity:  capacity,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services: map[string]interface{}{
			"sessions": hs.checkSessions(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.String("reason", sh.Message))
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version.Version,
		"api_version":  hs.version.APIVersion,
		"build_time":   hs.version.BuildTime,
		"git_commit":   hs.version.GitCommit,
		"go_version":   hs.version.GoVersion,
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkSessions() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{Status: "not_ready", Message: "session store not configured"}
	}
	n := hs.sessions.Len()
	if hs.capacity > 0 && n > hs.capacity {
		return ServiceHealth{Status: "not_ready", Message: "session store over capacity"}
	}
	return ServiceHealth{Status: "ready"}
}
