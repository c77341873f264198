package services

import (
	"context"
	"time"

	"Hacknox/database"
)

type HealthStatus struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health pings the database and Redis with a short deadline.
func Health(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{OK: true, Database: "ok", Redis: "ok"}
	if sqlDB, err := database.DB.DB(); err != nil {
		status.OK, status.Database = false, err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		status.OK, status.Database = false, err.Error()
	}
	if err := database.RDB.Ping(ctx).Err(); err != nil {
		status.OK, status.Redis = false, err.Error()
	}
	return status
}
