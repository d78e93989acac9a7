// Package services implements the business logic layer of the attendance
// extractor. It sits between the HTTP handlers and CLI on one side and the
// extraction engine, document loaders and exporters on the other.
//
// # Available Services
//
//	- ExtractionService: runs batches over a directory or a set of uploads
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Services return errors from internal/errors so handlers can map them to
// problem details:
//
//	- VALIDATION for bad metadata or unsupported documents
//	- STORAGE for unreadable inputs and unwritable outputs
//	- PARSING for malformed manifests
//
// Per-document failures never surface as errors. They are warnings in the
// batch report.
package services
