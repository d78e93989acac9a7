// Package app wires the attendance extractor HTTP server together.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and ATTEND_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Resolve and create the data, uploads, reports and logs directories
//	4. Build the extraction and health services
//	5. Mount handlers behind the middleware chain
//	6. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// Middleware order is RequestID, RealIP, OTel, StructuredLogger, Recoverer,
// SecurityHeaders, CORS, rate limiting. Extraction routes additionally get a
// body size limit and the extract timeout.
package app
