// Package api adapts HTTP requests to pipeline runs and pipeline results
// to HTTP responses. Every error maps to exactly one status code and a
// message that is safe to show to clients.
package api
