package database

import (
	"context"
	"time"
)

// HealthStatus reports connectivity plus pool pressure for the health
// endpoint.
type HealthStatus struct {
	Status         string `json:"status"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	OpenConns      int    `json:"open_connections"`
	InUse          int    `json:"in_use"`
	Idle           int    `json:"idle"`
	WaitCount      int64  `json:"wait_count"`
	MaxOpenConns   int    `json:"max_open_conns"`
}

// Health pings the database and snapshots connection pool statistics.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()

	if err := c.db.PingContext(ctx); err != nil {
		return &HealthStatus{
			Status:         "unhealthy",
			ResponseTimeMS: time.Since(start).Milliseconds(),
		}, err
	}

	stats := c.db.Stats()
	return &HealthStatus{
		Status:         "healthy",
		ResponseTimeMS: time.Since(start).Milliseconds(),
		OpenConns:      stats.OpenConnections,
		InUse:          stats.InUse,
		Idle:           stats.Idle,
		WaitCount:      stats.WaitCount,
		MaxOpenConns:   stats.MaxOpenConnections,
	}, nil
}
