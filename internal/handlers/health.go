package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
	"golang.org/x/sync/errgroup"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for dependency health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// RedisPinger adapts a Redis client for readiness checks.
// A nil client yields a nil Pinger, which reports the cache as disabled.
func RedisPinger(client *redis.Client) Pinger {
	if client == nil {
		return nil
	}
	return redisPinger{client: client}
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	db            Pinger
	cache         Pinger
	startTime     time.Time
	env           string
	schemaVersion int
}

// NewHealthHandler creates a new HealthHandler instance.
// cache may be nil when the record cache is disabled.
func NewHealthHandler(db Pinger, cache Pinger, env string) *HealthHandler {
	return &HealthHandler{
		db:            db,
		cache:         cache,
		startTime:     time.Now(),
		env:           env,
		schemaVersion: database.SchemaVersion(),
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	Uptime        string `json:"uptime"`
	SchemaVersion int    `json:"schema_version"`
}

// Health handles GET /health endpoint.
// This is a liveness check; it does not check any dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// The database and, when enabled, the cache are pinged concurrently.
// Returns 503 Service Unavailable if either is unreachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Database: "connected", Cache: "disabled"}

	// Each check records its own result, so the group never short-circuits
	var g errgroup.Group
	var dbErr, cacheErr error
	g.Go(func() error {
		dbErr = h.db.Ping(ctx)
		return nil
	})
	if h.cache != nil {
		g.Go(func() error {
			cacheErr = h.cache.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	log := middleware.GetLogger(c)
	if dbErr != nil {
		resp.Status = "not_ready"
		resp.Database = "disconnected"
		if log != nil {
			log.Error("Database health check failed", dbErr, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}
	}
	if h.cache != nil {
		resp.Cache = "connected"
		if cacheErr != nil {
			resp.Status = "not_ready"
			resp.Cache = "disconnected"
			if log != nil {
				log.Error("Cache health check failed", cacheErr, map[string]interface{}{
					"timeout": HealthCheckTimeout.String(),
				})
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Info handles GET /api/v1/info endpoint.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:       APIVersion,
		Environment:   h.env,
		Uptime:        formatUptime(time.Since(h.startTime)),
		SchemaVersion: h.schemaVersion,
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
