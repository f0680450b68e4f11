// Package client talks to the Bitácora REST API and bootstraps the local
// session database.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by the services: a generic JSON Request plus
//     the two unauthenticated calls needed by login (ObtainToken and
//     CurrentUser), the linked report URL and an authenticated Download.
//  2. RESTClient, the net/http implementation. It injects the bearer token
//     of a TokenSource, tags every call with an X-Request-ID and evicts the
//     session whenever the server answers 401.
//  3. InitDatabase and RunMigrations, which open the local SQLite file and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are returned as
// *APIError, which matches ErrBadRequest, ErrUnauthorized, ErrForbidden or
// ErrNotFound with errors.Is. A 2xx answer that is not JSON wraps
// ErrInvalidResponse. A 204 answer is reported as Result.NoContent and its
// body is never read as JSON.
//
// The error of the most recent Request is kept and exposed by LastError.
package client
