package api

import (
	"fmt"
	"time"
)

// HealthStatus reports process liveness. The calculator holds no
// external dependencies, so there are no per-component checks.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

const healthVersion = "1.0.0"

var startTime = time.Now()

func healthStatus() HealthStatus {
	return HealthStatus{
		Status:  "healthy",
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(startTime)),
	}
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
