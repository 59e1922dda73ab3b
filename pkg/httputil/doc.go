// Package httputil provides HTTP helpers for the simulation server.
//
// # Overview
//
// This package provides the infrastructure shared by every handler:
//
//   - [WriteJSON]: JSON responses with a status code
//   - [WriteError]: error responses classified by [errors.Kind]
//   - [Observe]: middleware that reports requests to observability hooks
//
// # Errors
//
// [StatusFor] maps errors from the crane and pipeline packages to HTTP
// status codes:
//
//   - parse errors and bad input: 400 Bad Request
//   - invariant violations (stack underflow, unknown column): 422
//   - a missing file: 404 Not Found
//   - everything else: 500 Internal Server Error
//
// The response body is an [ErrorBody]:
//
//	{"code": "STACK_UNDERFLOW", "message": "...", "line": 7}
//
// Internal errors never expose their cause; the body carries a generic
// message and the code INTERNAL_ERROR.
package httputil
