// Package cli provides the interactive ridegate terminal client.
//
// It wires configuration, the token store, the REST client with its
// credential interceptor, the session manager and the route guard, then runs
// a REPL whose commands stand in for the web views: login, register, logout,
// opening pages and fetching API resources.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
