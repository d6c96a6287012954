package messaging

import "fmt"

// HealthStatus is the health of a broker connection.
type HealthStatus struct {
	Connected bool    `json:"connected"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// Healthy reports whether the connection is usable.
func (h HealthStatus) Healthy() bool {
	return h.Connected && h.Error == ""
}

// CheckClientHealth reports whether client is connected and how long a
// round trip takes.
func CheckClientHealth(client Client) HealthStatus {
	if client == nil {
		return HealthStatus{Error: "messaging disabled"}
	}
	status := HealthStatus{Connected: client.IsConnected()}
	if !status.Connected {
		status.Error = "not connected to message broker"
		return status
	}
	rtt, err := client.RTT()
	if err != nil {
		status.Error = fmt.Sprintf("health check failed: %v", err)
		return status
	}
	status.LatencyMS = float64(rtt.Microseconds()) / 1000
	return status
}
