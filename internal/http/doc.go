// Package http provides HTTP handlers and middleware for the tutoring
// schedule API.
//
// The router exposes the following endpoints:
//   - GET /students, POST /students, GET/PUT/DELETE /students/{id}: roster
//     management exchanging the `studentDTO` payload defined in
//     student_handler.go.
//   - GET /students/{id}/lessons, GET /students/{id}/rules: per-student
//     lesson history and configured weekly slots.
//   - GET /students/{id}/progress, POST /students/{id}/progress,
//     PUT/DELETE /progress/{id}: dated progress notes.
//   - GET /lessons?from=&to=, POST /lessons, GET/PUT/DELETE /lessons/{id}:
//     concrete bookings exchanging the `lessonDTO` payload defined in
//     lesson_handler.go. The list range is closed on both ends.
//   - PUT /lessons/{id}/payment: payment status changes
//     (pending/paid/cancelled).
//   - GET /rules, POST /rules, GET/PUT/DELETE /rules/{id}: weekly recurrence
//     rules exchanging the `ruleDTO` payload defined in rule_handler.go.
//   - GET /timeline?from=&to=: the merged calendar of persisted lessons and
//     generated occurrences; generated entries carry `"is_generated": true`
//     and a synthetic `recurring_<rule>_<ms>` ID.
//   - POST /materialize?from=&to=: persists generated occurrences as pending
//     lessons and reports created/skipped/error counts.
//   - GET /payments/summary?from=&to=: per-status counts and amount totals
//     over the persisted lessons in the range.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
