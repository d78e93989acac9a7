// Package http exposes the attendance extractor over HTTP.
//
// Routes, mounted under /api by the app package:
//
//	POST /api/extract            multipart upload, ?format=json|csv|xlsx
//	GET  /api/grades             grade levels and group numbers for the form
//	GET  /api/health             overall health
//	GET  /api/health/live        liveness
//	GET  /api/health/ready       readiness
//	GET  /api/version            build information
//	GET  /metrics                Prometheus exposition
//
// Every error response is an RFC 7807 problem document produced by
// internal/errors.
package http
