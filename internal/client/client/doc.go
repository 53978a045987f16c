// Package client is the ridegate REST API client.
//
// # Overview
//
//  1. Client: the token-issuance and registration calls the session layer
//     needs (ObtainToken, RegisterDriver, RegisterPassenger).
//  2. HTTPClient: the JSON-over-HTTP implementation, plus generic
//     GetJSON/PostJSON/PatchJSON/Delete for the CRUD views. It does not know
//     about tokens; the interceptor installed as its transport adds them.
//
// # Error Handling
//
// Failures are returned as *APIError whose Kind is one of ErrUnavailable,
// ErrCredentialsRejected, ErrValidationFailed, ErrUnauthorized or
// ErrRequestFailed (match with errors.Is). Message holds the first message
// found in the server's response or a generic fallback; UserMessage extracts
// it for display. Requests aborted by the interceptor keep
// common.ErrSessionExpired.
package client
