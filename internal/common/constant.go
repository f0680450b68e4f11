// Package common contains constants and sentinel errors shared by the
// Bitácora client packages.
package common

// Header names used on every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"

	// AuthorizationScheme is the prefix the API expects in front of the token.
	AuthorizationScheme = "Token"
)

// DateLayout is the calendar date format used by the API (fecha, fecha_pago...).
const DateLayout = "2006-01-02"
