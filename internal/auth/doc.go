// Package auth provides user registration, credential verification and
// JWT-based request authentication for the API.
//
// Identity is username-based; the import pipeline only ever sees the
// opaque numeric user ID carried in the token claims.
package auth
