// Package acl adapts the downstream echo service to the ports the application
// layer depends on.
//
// Downstream payloads are decoded into local DTOs and converted before they
// reach the domain, and downstream failures are reported as domain errors:
//
//   - 404 becomes [domain.ErrNotFound]
//   - 400 and 422 become [domain.ErrValidation]
//   - 504 and context deadlines become [domain.ErrDeadlineExceeded]
//   - other 5xx, 429, transport errors, [clients.ErrCircuitOpen] and
//     [clients.ErrMaxRetriesExceeded] become [domain.ErrUnavailable]
//
// [DownstreamClient] is the adapter background tasks call. It relies on the
// HTTP client to stamp the attached trace and correlation ids onto every
// outbound request, so a task only has to be resumed with those values
// attached.
package acl
