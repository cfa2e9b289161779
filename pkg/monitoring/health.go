// Package monitoring provides Prometheus metrics and health checking
// for the query generator and the OSM services it depends on.
package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/NERVsystems/oqlgen/pkg/version"
)

// ConnStatus describes the last observed state of an external service
// connection.
type ConnStatus struct {
	Status    string `json:"status"` // "connected", "disconnected", "error"
	Latency   int64  `json:"latency_ms,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// ServiceHealth is the payload served by the health endpoint.
type ServiceHealth struct {
	Service     string                `json:"service"`
	Version     string                `json:"version"`
	Status      string                `json:"status"` // "healthy", "degraded", "unhealthy"
	Uptime      time.Duration         `json:"uptime"`
	StartTime   time.Time             `json:"start_time,omitempty"`
	Connections map[string]ConnStatus `json:"connections"`
	Metrics     map[string]any        `json:"metrics,omitempty"`
}

// HealthChecker tracks external service connectivity and serves
// health, readiness, and liveness endpoints.
type HealthChecker struct {
	serviceName string
	version     string
	startTime   time.Time
	mu          sync.RWMutex
	connections map[string]*ConnStatus
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHealthChecker creates a health checker and starts background
// system metrics collection.
func NewHealthChecker(serviceName, serviceVersion string) *HealthChecker {
	ctx, cancel := context.WithCancel(context.Background())

	hc := &HealthChecker{
		serviceName: serviceName,
		version:     serviceVersion,
		startTime:   time.Now(),
		connections: make(map[string]*ConnStatus),
		ctx:         ctx,
		cancel:      cancel,
	}

	go hc.collectSystemMetrics()

	return hc
}

// UpdateConnection records the status of an external service connection.
func (h *HealthChecker) UpdateConnection(name, status string, latencyMs int64, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	errStr := ""
	if err != nil {
		errStr = err.Error()
	}

	h.connections[name] = &ConnStatus{
		Status:    status,
		Latency:   latencyMs,
		LastError: errStr,
	}
}

// GetHealth returns the current health status.
func (h *HealthChecker) GetHealth() ServiceHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	errorCount := 0
	for _, conn := range h.connections {
		if conn.Status == "error" || conn.Status == "disconnected" {
			errorCount++
		}
	}

	if errorCount > 0 {
		if errorCount > len(h.connections)/2 {
			status = "unhealthy"
		} else {
			status = "degraded"
		}
	}

	connections := make(map[string]ConnStatus, len(h.connections))
	for k, v := range h.connections {
		connections[k] = *v
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ServiceHealth{
		Service:     h.serviceName,
		Version:     h.version,
		Status:      status,
		Uptime:      time.Since(h.startTime),
		StartTime:   h.startTime,
		Connections: connections,
		Metrics: map[string]any{
			"goroutines":        runtime.NumGoroutine(),
			"memory_alloc_mb":   m.Alloc / 1024 / 1024,
			"gc_runs":           m.NumGC,
			"total_connections": len(h.connections),
			"error_connections": errorCount,
		},
	}
}

// HealthHandler returns an HTTP handler serving the full health report.
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := h.GetHealth()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if err := json.NewEncoder(w).Encode(health); err != nil {
			http.Error(w, fmt.Sprintf("failed to encode health response: %v", err), http.StatusInternalServerError)
		}
	}
}

// ReadinessHandler returns a simple readiness check.
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := h.GetHealth()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		response := map[string]any{
			"ready":  health.Status != "unhealthy",
			"status": health.Status,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, fmt.Sprintf("failed to encode readiness response: %v", err), http.StatusInternalServerError)
		}
	}
}

// LivenessHandler returns a simple liveness check.
func (h *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := map[string]any{
			"alive":  true,
			"uptime": time.Since(h.startTime).String(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, fmt.Sprintf("failed to encode liveness response: %v", err), http.StatusInternalServerError)
		}
	}
}

func (h *HealthChecker) collectSystemMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.updateSystemMetrics()
		}
	}
}

func (h *HealthChecker) updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	GoRoutines.Set(float64(runtime.NumGoroutine()))
	MemoryUsage.Set(float64(m.Alloc))

	info := version.Info()
	SystemInfo.WithLabelValues(
		info["version"],
		info["go_version"],
		info["commit"],
		info["build_date"],
	).Set(1)
}

// Shutdown stops background metrics collection.
func (h *HealthChecker) Shutdown() {
	h.cancel()
}

// ConnectionMonitor periodically probes an external service and feeds
// the result into a HealthChecker.
type ConnectionMonitor struct {
	name          string
	healthChecker *HealthChecker
	checkFunc     func(ctx context.Context) error
	interval      time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewConnectionMonitor creates a monitor for a named service.
func NewConnectionMonitor(name string, hc *HealthChecker, checkFunc func(ctx context.Context) error, interval time.Duration) *ConnectionMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &ConnectionMonitor{
		name:          name,
		healthChecker: hc,
		checkFunc:     checkFunc,
		interval:      interval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins monitoring the connection.
func (cm *ConnectionMonitor) Start() {
	go cm.monitor()
}

// Stop stops monitoring the connection.
func (cm *ConnectionMonitor) Stop() {
	cm.cancel()
}

func (cm *ConnectionMonitor) monitor() {
	cm.performCheck()

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cm.ctx.Done():
			return
		case <-ticker.C:
			cm.performCheck()
		}
	}
}

func (cm *ConnectionMonitor) performCheck() {
	start := time.Now()
	err := cm.checkFunc(cm.ctx)
	latency := time.Since(start).Milliseconds()

	status := "connected"
	if err != nil {
		status = "error"
	}

	cm.healthChecker.UpdateConnection(cm.name, status, latency, err)
}
