package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// DatasetStatusProvider reports the dataset being served. *DatasetService satisfies it.
type DatasetStatusProvider interface {
	Status() DatasetStatus
}

// SessionCounter reports live sessions. *auth.SessionStore satisfies it.
type SessionCounter interface {
	Len() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetStatusProvider
	sessions  SessionCounter
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
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, dataset DatasetStatusProvider, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"dataset": hs.checkDatasetHealth(),
		},
	}

	hs.logger.Debug("HealthCheck: completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports ready only while a dataset snapshot is being served
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset"] = hs.checkDatasetHealth()
	status.Services["sessions"] = hs.checkSessionHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
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
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not initialized"}
	}

	st := hs.dataset.Status()
	if !st.Loaded {
		msg := "dataset not loaded"
		if st.LastError != "" {
			msg = fmt.Sprintf("dataset not loaded: %s", st.LastError)
		}
		return ServiceHealth{Status: "not_ready", Message: msg, Details: st}
	}

	msg := fmt.Sprintf("%d records loaded", st.Records)
	if st.LastError != "" {
		msg = fmt.Sprintf("%d records served; last reload failed: %s", st.Records, st.LastError)
	}
	return ServiceHealth{Status: "ready", Message: msg, Details: st}
}

func (hs *HealthService) checkSessionHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{Status: "not_ready", Message: "session store not initialized"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d active sessions", hs.sessions.Len()),
	}
}
