// Package server implements the loopback half of the authorization-code
// flow: a one-shot callback listener and the Authorizer that drives it.
//
// # Callback Listener
//
// [CallbackListener] binds the loopback callback port up front and then
// services exactly one connection. It reads only the request line — the
// second whitespace-separated token is the redirected path — and parses
// it against a synthetic local origin to pull out the code and echoed
// state. A static success page is written back on the same connection
// and the listener is discarded. There is no router, no handler
// registration, and no concurrent callback handling; one browser
// redirect is the entire protocol.
//
// The wait is bounded by a configurable timeout and by the caller's
// context, so a user abandoning the browser cannot suspend the process
// indefinitely.
//
// # Authorizer
//
// [Authorizer] owns the program's only [oauth2.Config]. It generates the
// CSRF state token, constructs the authorization URL, fires off the
// browser launch (printing the URL for manual use when the launch
// fails), waits on the listener, and exchanges the code at the token
// endpoint. The echoed state must match the generated one; disagreement
// fails the flow with [shared.ErrStateMismatch] before any exchange is
// attempted.
//
// Tokens live only in process memory. Nothing in this package or its
// callers persists them.
package server
