// Package admin serves the archive's admin and observability HTTP API.
//
// The API is read-only and intended for operators and monitoring systems:
//
//	GET /healthz                     liveness probe
//	GET /metrics                     Prometheus metrics
//	GET /v1/info                     instance name, version, control plane stats
//	GET /v1/sessions                 live control session snapshots
//	GET /v1/segments/{recordingID}   offloaded segments for one recording
//
// Session and stats snapshots are taken on the conductor goroutine, so
// handlers bound their wait with a timeout and answer 503 when the control
// plane cannot be reached in time.
package admin
