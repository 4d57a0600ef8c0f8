// Package server exposes the export pipeline over HTTP.
//
// Routes:
//
//	GET /export?include=a,b  the export document as a JSON attachment
//	GET /healthz             liveness
//	GET /metrics             Prometheus metrics
//
// The export body is canonical JSON; its digest is the ETag, so unchanged
// templates answer conditional requests with 304.
package server
