// Package observe provides the telemetry the gate reports through:
// a redacting structured JSON logger, gate-stage spans and decision
// metrics on OpenTelemetry, and an instrumented HTTP client for the
// remote identity, registry and usage endpoints.
//
// Tokens and API keys are never logged. Fields named after credential
// material (see RedactedFields) are replaced with "[REDACTED]" even when
// a caller passes them by mistake.
package observe
